package tcpserver

import (
	"sync/atomic"
)

// ConnectionLimiter 并发链路数上限（信号量）。接受循环在建链时
// TryAcquire：满载立即拒绝并关闭连接，不让 accept 循环排队等名额，
// HF 侧重连比排队更符合 RFCOMM 的行为。
type ConnectionLimiter struct {
	sem           chan struct{}
	maxConn       int
	rejectedCount atomic.Int64
}

// NewConnectionLimiter 创建链路数限流器
func NewConnectionLimiter(maxConn int) *ConnectionLimiter {
	if maxConn <= 0 {
		maxConn = 1024
	}
	return &ConnectionLimiter{
		sem:     make(chan struct{}, maxConn),
		maxConn: maxConn,
	}
}

// TryAcquire 申请一个链路名额，满载返回 false
func (l *ConnectionLimiter) TryAcquire() bool {
	select {
	case l.sem <- struct{}{}:
		return true
	default:
		l.rejectedCount.Add(1)
		return false
	}
}

// Release 归还名额。未持有名额时不做事。
func (l *ConnectionLimiter) Release() {
	select {
	case <-l.sem:
	default:
	}
}

// Current 当前占用的名额数
func (l *ConnectionLimiter) Current() int { return len(l.sem) }

// MaxConnections 链路数上限
func (l *ConnectionLimiter) MaxConnections() int { return l.maxConn }

// RejectedCount 因满载被拒绝的链路数（累计）
func (l *ConnectionLimiter) RejectedCount() int64 { return l.rejectedCount.Load() }

// Stats 当前统计
func (l *ConnectionLimiter) Stats() LimiterStats {
	cur := l.Current()
	return LimiterStats{
		MaxConnections:    l.maxConn,
		ActiveConnections: cur,
		RejectedTotal:     l.RejectedCount(),
		Utilization:       float64(cur) / float64(l.maxConn),
	}
}

// LimiterStats 链路数限流统计
type LimiterStats struct {
	MaxConnections    int     `json:"max_connections"`
	ActiveConnections int     `json:"active_connections"`
	RejectedTotal     int64   `json:"rejected_total"`
	Utilization       float64 `json:"utilization"` // 0.0 - 1.0
}
