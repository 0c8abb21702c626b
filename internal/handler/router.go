package handler

import (
	"github.com/gin-gonic/gin"
)

// NewRouter - status API 라우터 구성
func NewRouter(status *StatusHandler, reports *ReportHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger())

	router.GET("/", Root)
	router.GET("/ping", Ping)

	v1 := router.Group("/api/v1")
	v1.GET("/stats", status.GetStats)
	v1.GET("/targets", status.GetTargets)
	if reports != nil {
		v1.GET("/reports", reports.GetReports)
	}
	return router
}
