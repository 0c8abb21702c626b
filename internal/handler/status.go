package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/logsentry/agent/internal/model"
	"github.com/logsentry/agent/internal/service"
)

type statsSource interface {
	Snapshot() service.StatsSnapshot
}

type targetSource interface {
	Targets() []model.WatchTarget
}

type dedupSizer interface {
	Len() int
}

type StatusHandler struct {
	stats   statsSource
	targets targetSource
	dedup   dedupSizer
}

func NewStatusHandler(stats statsSource, targets targetSource, dedup dedupSizer) *StatusHandler {
	return &StatusHandler{stats: stats, targets: targets, dedup: dedup}
}

// GetStats - 파이프라인 단계별 누적 카운트
// GET /api/v1/stats
func (h *StatusHandler) GetStats(c *gin.Context) {
	snap := h.stats.Snapshot()
	res := model.StatsResponse{
		Status:           "success",
		LinesRead:        snap.LinesRead,
		Detected:         snap.Detected,
		Suppressed:       snap.Suppressed,
		Dispatched:       snap.Dispatched,
		Dropped:          snap.Dropped,
		AnalyzerFailures: snap.AnalyzerFailures,
		PersistFailures:  snap.PersistFailures,
		NotifyFailures:   snap.NotifyFailures,
		Completed:        snap.Completed,
	}
	if h.dedup != nil {
		res.DedupEntries = h.dedup.Len()
	}
	c.JSON(http.StatusOK, res)
}

// GetTargets - 감시 대상 목록
// GET /api/v1/targets
func (h *StatusHandler) GetTargets(c *gin.Context) {
	targets := h.targets.Targets()
	data := make([]model.TargetResponse, 0, len(targets))
	for _, t := range targets {
		data = append(data, model.TargetResponse{Path: t.Path, Keywords: t.Keywords})
	}
	c.JSON(http.StatusOK, model.TargetListResponse{Status: "success", Data: data})
}
