package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/logsentry/agent/internal/model"
)

const (
	defaultReportLimit = 20
	maxReportLimit     = 200
)

type reportLister interface {
	RecentReports(ctx context.Context, limit int) ([]model.ReportEntry, error)
}

type ReportHandler struct {
	reports reportLister
}

func NewReportHandler(reports reportLister) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// GetReports - 최근 보고서 목록
// GET /api/v1/reports?limit=20
func (h *ReportHandler) GetReports(c *gin.Context) {
	limit := defaultReportLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxReportLimit)
	}

	res, err := h.reports.RecentReports(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.ReportListResponse{Status: "success", Data: res})
}
