// Package eventbus 提供进程内的引擎事件总线。
// SLC 管理器在链路接入、握手完成、过程出错等节点发布事件，
// 运维 API 与日志侧按需订阅，发布端永不阻塞。
package eventbus

import (
	"time"

	"github.com/cskr/pubsub/v2"
)

// EventKind 事件类别
type EventKind uint

const (
	// EventPeerAttached 链路接入，SLC 握手开始
	EventPeerAttached EventKind = iota + 1
	// EventSlcEstablished SLC 握手完成
	EventSlcEstablished
	// EventPeerDetached 链路拆除
	EventPeerDetached
	// EventProcedureError 过程返回错误（时序非法、参数越界等）
	EventProcedureError
	// EventCallAction 过程请求的呼叫动作已转发给电话栈
	EventCallAction
	// EventUpdateBroadcast AG 侧更新已广播给各链路
	EventUpdateBroadcast
)

// topicAll 汇总主题，订阅全部类别时使用
const topicAll uint = 0

var eventKindNames = map[EventKind]string{
	EventPeerAttached:    "peer_attached",
	EventSlcEstablished:  "slc_established",
	EventPeerDetached:    "peer_detached",
	EventProcedureError:  "procedure_error",
	EventCallAction:      "call_action",
	EventUpdateBroadcast: "update_broadcast",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event 引擎对外发布的单条事件
type Event struct {
	Kind   EventKind `json:"-"`
	Name   string    `json:"event"`
	Peer   string    `json:"peer,omitempty"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// Bus 进程内事件总线。
// 底层是带缓冲的 pubsub，发布走 TryPub：订阅者消费不及时时直接丢弃，
// 保证引擎主循环不会被慢订阅者拖住。
type Bus struct {
	ps *pubsub.PubSub[uint, Event]
}

// New 创建事件总线，capacity 为每个订阅通道的缓冲长度
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = 16
	}
	return &Bus{ps: pubsub.New[uint, Event](capacity)}
}

// Publish 发布事件，同时投递到类别主题与汇总主题
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	if ev.Name == "" {
		ev.Name = ev.Kind.String()
	}
	b.ps.TryPub(ev, uint(ev.Kind), topicAll)
}

// Subscription 订阅句柄，Cancel 后通道由总线关闭
type Subscription struct {
	C      chan Event
	topics []uint
	bus    *Bus
	active bool
}

// Cancel 退订。退订在后台完成，避免与在途发布互相等待。
func (s *Subscription) Cancel() {
	if !s.active {
		return
	}
	s.active = false
	ch, topics, bus := s.C, s.topics, s.bus
	go bus.ps.Unsub(ch, topics...)
}

// Subscribe 订阅指定类别的事件，不传类别时订阅全部
func (b *Bus) Subscribe(kinds ...EventKind) *Subscription {
	topics := make([]uint, 0, len(kinds)+1)
	if len(kinds) == 0 {
		topics = append(topics, topicAll)
	}
	for _, k := range kinds {
		topics = append(topics, uint(k))
	}
	return &Subscription{
		C:      b.ps.Sub(topics...),
		topics: topics,
		bus:    b,
		active: true,
	}
}

// Close 关闭总线并关闭所有订阅通道
func (b *Bus) Close() {
	if b == nil {
		return
	}
	b.ps.Shutdown()
}
