package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader 请求 ID 响应头
const RequestIDHeader = "X-Request-ID"

// Logger 请求日志中间件
// 静态资源与健康检查不记录
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		// 处理请求
		c.Next()

		if strings.HasPrefix(path, "/static/") || path == "/health" {
			return
		}

		latency := time.Since(start)
		status := c.Writer.Status()
		htmx := ""
		if c.GetHeader("HX-Request") == "true" {
			htmx = " htmx"
		}

		log.Printf("[%s] %s %s %d %v%s rid=%s",
			c.Request.Method,
			path,
			c.ClientIP(),
			status,
			latency,
			htmx,
			requestID,
		)
	}
}
