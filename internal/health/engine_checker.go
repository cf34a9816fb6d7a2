package health

import (
	"context"
	"time"

	"github.com/lanwave/hfp-ag/internal/slc"
)

// EngineChecker SLC 引擎健康检查器
type EngineChecker struct {
	mgr *slc.Manager
}

// NewEngineChecker 创建引擎健康检查器
func NewEngineChecker(mgr *slc.Manager) *EngineChecker {
	return &EngineChecker{mgr: mgr}
}

func (c *EngineChecker) Name() string { return "slc_engine" }

// Check 引擎没有可耗尽的资源池，始终健康；上报链路与握手计数供观察
func (c *EngineChecker) Check(ctx context.Context) Result {
	start := time.Now()
	total := c.mgr.Count()
	established := c.mgr.EstablishedCount()
	return Result{
		Status:  StatusHealthy,
		Message: "ok",
		Details: map[string]any{
			"peers":       total,
			"established": established,
			"handshaking": total - established,
		},
		Elapsed: time.Since(start),
	}
}
