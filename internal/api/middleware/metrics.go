package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"staff-attendance/pkg/metrics"
)

// Metrics 记录请求数与耗时，路由按模板聚合避免路径参数导致高基数
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
