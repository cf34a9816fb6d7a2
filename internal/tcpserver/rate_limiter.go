package tcpserver

import (
	"sync/atomic"

	"golang.org/x/time/rate"
)

// AcceptRateLimiter 建链速率限流（令牌桶）。只提供非阻塞的 Allow：
// 接受循环不等令牌，超速的链路直接拒绝。
type AcceptRateLimiter struct {
	limiter       *rate.Limiter
	perSec        float64
	burst         int
	allowedCount  atomic.Int64
	rejectedCount atomic.Int64
}

// NewAcceptRateLimiter 创建建链速率限流器。
// perSec 为每秒允许的新链路数，burst 为突发容量，缺省为 2 倍稳定速率。
func NewAcceptRateLimiter(perSec float64, burst int) *AcceptRateLimiter {
	if perSec <= 0 {
		perSec = 64
	}
	if burst <= 0 {
		burst = int(perSec) * 2
	}
	return &AcceptRateLimiter{
		limiter: rate.NewLimiter(rate.Limit(perSec), burst),
		perSec:  perSec,
		burst:   burst,
	}
}

// Allow 申请一个建链令牌（非阻塞）
func (l *AcceptRateLimiter) Allow() bool {
	if l.limiter.Allow() {
		l.allowedCount.Add(1)
		return true
	}
	l.rejectedCount.Add(1)
	return false
}

// AllowedCount 放行的建链数（累计）
func (l *AcceptRateLimiter) AllowedCount() int64 { return l.allowedCount.Load() }

// RejectedCount 超速被拒的建链数（累计）
func (l *AcceptRateLimiter) RejectedCount() int64 { return l.rejectedCount.Load() }

// Stats 当前统计
func (l *AcceptRateLimiter) Stats() RateLimiterStats {
	return RateLimiterStats{
		RatePerSecond: l.perSec,
		Burst:         l.burst,
		AllowedTotal:  l.AllowedCount(),
		RejectedTotal: l.RejectedCount(),
	}
}

// RateLimiterStats 建链速率限流统计
type RateLimiterStats struct {
	RatePerSecond float64 `json:"rate_per_second"`
	Burst         int     `json:"burst"`
	AllowedTotal  int64   `json:"allowed_total"`
	RejectedTotal int64   `json:"rejected_total"`
}
