package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/logsentry/agent/internal/logger"
)

// RequestLogger - gin 기본 Logger 대신 zerolog로 요청 로그 기록
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := logger.Named("http")
		ev := log.Debug()
		if c.Writer.Status() >= 500 {
			ev = log.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}
