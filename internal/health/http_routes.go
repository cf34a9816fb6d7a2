package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterHTTPRoutes 挂载深度健康检查路由。轻量的 /healthz 与 /readyz
// 由 httpserver 注册，这里只提供带各检查器明细的 /healthz/detail。
func RegisterHTTPRoutes(r *gin.Engine, aggregator *Aggregator) {
	r.GET("/healthz/detail", func(c *gin.Context) {
		report := aggregator.Report(c.Request.Context())
		code := http.StatusOK
		if report.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		// Degraded 仍返回 200：链路接近上限但还在服务
		c.JSON(code, report)
	})
}
