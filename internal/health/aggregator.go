package health

import (
	"context"
	"sync"
	"time"
)

// Report 一次完整检查的总报告
type Report struct {
	Status    Status            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]Result `json:"checks"`
}

// Aggregator 并发执行全部检查并归并总体状态。
// 检查器集合在启动期固定（本守护进程只有链路层与引擎两类），
// 不提供运行期增删。
type Aggregator struct {
	checkers []Checker
}

// NewAggregator 创建聚合器
func NewAggregator(checkers ...Checker) *Aggregator {
	return &Aggregator{checkers: checkers}
}

// Report 并发执行全部检查，产出带时间戳的总报告。
// 总体状态取各项中最差的一个。
func (a *Aggregator) Report(ctx context.Context) Report {
	results := make(map[string]Result, len(a.checkers))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, c := range a.checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()
			r := c.Check(ctx)
			mu.Lock()
			results[c.Name()] = r
			mu.Unlock()
		}(c)
	}
	wg.Wait()

	overall := StatusHealthy
	for _, r := range results {
		overall = Worse(overall, r.Status)
	}
	return Report{Status: overall, Timestamp: time.Now(), Checks: results}
}

// Ready 就绪判定：降级仍视为就绪，只有 Unhealthy 不就绪
func (a *Aggregator) Ready(ctx context.Context) bool {
	return a.Report(ctx).Status != StatusUnhealthy
}
