package health

import "sync/atomic"

// Readiness 就绪状态聚合（TCP 链路层、SLC 引擎）
type Readiness struct {
	tcpReady    atomic.Bool
	engineReady atomic.Bool
}

func New() *Readiness { return &Readiness{} }

func (r *Readiness) SetTCPReady(v bool)    { r.tcpReady.Store(v) }
func (r *Readiness) SetEngineReady(v bool) { r.engineReady.Store(v) }

// Ready 总体就绪：各子系统均为 true
func (r *Readiness) Ready() bool {
	return r.tcpReady.Load() && r.engineReady.Load()
}
