package health

import (
	"context"
	"fmt"
	"time"

	"github.com/lanwave/hfp-ag/internal/tcpserver"
)

// 链路占用率阈值：超过 degradedRatio 降级，超过 unhealthyRatio 视为不可用
const (
	degradedRatio  = 0.8
	unhealthyRatio = 0.95
)

// TCPChecker TCP 链路层（RFCOMM 仿真网关）健康检查器
type TCPChecker struct {
	server *tcpserver.Server
}

// NewTCPChecker 创建链路层健康检查器
func NewTCPChecker(server *tcpserver.Server) *TCPChecker {
	return &TCPChecker{server: server}
}

func (c *TCPChecker) Name() string { return "tcp_gateway" }

// Check 按链路占用率判定状态，并附带限流统计
func (c *TCPChecker) Check(ctx context.Context) Result {
	start := time.Now()
	activeConns := c.server.ActiveConnections()
	maxConns := c.server.MaxConnections()

	if maxConns == 0 {
		return Result{
			Status:  StatusHealthy,
			Message: "no connection limit",
			Details: map[string]any{"active_links": activeConns},
			Elapsed: time.Since(start),
		}
	}

	utilization := float64(activeConns) / float64(maxConns)
	status, message := StatusHealthy, "ok"
	switch {
	case utilization > unhealthyRatio:
		status, message = StatusUnhealthy, "link capacity exhausted"
	case utilization > degradedRatio:
		status, message = StatusDegraded, "link capacity nearly full"
	}

	details := map[string]any{
		"active_links": activeConns,
		"max_links":    maxConns,
		"utilization":  fmt.Sprintf("%.1f%%", utilization*100),
	}
	if st := c.server.LimiterStats(); st != nil {
		details["links_rejected_total"] = st.RejectedTotal
	}
	if st := c.server.RateLimiterStats(); st != nil {
		details["accepts_rejected_total"] = st.RejectedTotal
	}

	return Result{
		Status:  status,
		Message: message,
		Details: details,
		Elapsed: time.Since(start),
	}
}
