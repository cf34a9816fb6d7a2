package eventbus

import "sync"

// Recorder 订阅总线并保留最近 N 条事件，供运维 API 查询。
// 超出容量时丢最旧的。
type Recorder struct {
	mu  sync.Mutex
	buf []Event
	max int
	sub *Subscription
	wg  sync.WaitGroup
}

// NewRecorder 创建事件记录器并开始消费
func NewRecorder(bus *Bus, max int) *Recorder {
	if max <= 0 {
		max = 256
	}
	r := &Recorder{max: max, sub: bus.Subscribe()}
	r.wg.Add(1)
	go r.consume()
	return r
}

func (r *Recorder) consume() {
	defer r.wg.Done()
	for ev := range r.sub.C {
		r.mu.Lock()
		r.buf = append(r.buf, ev)
		if len(r.buf) > r.max {
			r.buf = r.buf[len(r.buf)-r.max:]
		}
		r.mu.Unlock()
	}
}

// Recent 返回最近的事件，新的在后
func (r *Recorder) Recent(limit int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.buf)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Event, n)
	copy(out, r.buf[len(r.buf)-n:])
	return out
}

// Close 停止消费。总线关闭订阅通道后消费循环自行退出。
func (r *Recorder) Close() {
	r.sub.Cancel()
	r.wg.Wait()
}
