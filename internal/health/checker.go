// Package health 聚合各子系统（TCP 链路层、SLC 引擎）的健康检查，
// 经 /healthz/detail 暴露明细。/healthz 与 /readyz 的轻量探针由
// httpserver 直接提供，这里只做深度检查。
package health

import (
	"context"
	"time"
)

// Status 健康状态
type Status string

const (
	StatusHealthy   Status = "healthy"   // 健康
	StatusDegraded  Status = "degraded"  // 降级（链路接近上限等，仍可服务）
	StatusUnhealthy Status = "unhealthy" // 不健康（无法再接受链路）
)

// statusRank 状态恶劣程度排序，用于归并总体状态
var statusRank = map[Status]int{
	StatusHealthy:   0,
	StatusDegraded:  1,
	StatusUnhealthy: 2,
}

// Worse 返回两个状态中较差的一个
func Worse(a, b Status) Status {
	if statusRank[b] > statusRank[a] {
		return b
	}
	return a
}

// Result 单项检查结果
type Result struct {
	Status  Status         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Elapsed time.Duration  `json:"elapsed"`
}

// Checker 单个子系统的健康检查器
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}
