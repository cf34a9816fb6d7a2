// Package slc 实现 SLC 调度层：为每条已接入的字节链路维护一个串行
// 处理循环，把入站 AT 命令与 AG 侧更新路由到对应的过程实例，并按
// 产生顺序写出下行应答。连接状态由循环独占持有，过程之外无人改动。
package slc

import (
	"context"
	"errors"
	"net"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/eventbus"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/hfp/procedure"
	"github.com/lanwave/hfp-ag/internal/metrics"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// DefaultHandshakeTimeout SLC 握手允许的最长时间，超时即拆链
const DefaultHandshakeTimeout = 10 * time.Second

// ErrPeerClosed 链路已拆除，入队被拒绝
var ErrPeerClosed = errors.New("slc: peer closed")

// ErrInboxFull 处理队列已满，非阻塞投递被放弃
var ErrInboxFull = errors.New("slc: peer inbox full")

// Link 已建立的对 HF 字节链路。传输层（RFCOMM 或其 TCP 仿真）负责
// 建链与读写循环，调度层只通过该接口写出和关闭。
type Link interface {
	Write(b []byte) error
	Close() error
	Done() <-chan struct{}
	RemoteAddr() net.Addr
}

// inboxItem 处理循环的单条输入：入站原始字节或一条 AG 更新
type inboxItem struct {
	data   []byte
	update *telephony.AgUpdate
}

// Snapshot 链路状态快照，供运维 API 读取
type Snapshot struct {
	ID               string    `json:"id"`
	Remote           string    `json:"remote"`
	Initialized      bool      `json:"initialized"`
	HfFeatures       uint32    `json:"hf_features"`
	Codec            string    `json:"codec"`
	Indicators       string    `json:"indicators"`
	IndicatorEvents  bool      `json:"indicator_events"`
	CallWaiting      bool      `json:"call_waiting"`
	CallLineIdent    bool      `json:"call_line_ident"`
	ExtendedErrors   bool      `json:"extended_errors"`
	InbandRing       bool      `json:"inband_ring"`
	SpeakerGain      int       `json:"speaker_gain"`
	MicrophoneGain   int       `json:"microphone_gain"`
	ActiveProcedures []string  `json:"active_procedures,omitempty"`
	Commands         uint64    `json:"commands"`
	Updates          uint64    `json:"updates"`
	ConnectedAt      time.Time `json:"connected_at"`
}

// PeerParams 创建链路调度器所需的依赖
type PeerParams struct {
	ID               telephony.PeerID
	Link             Link
	State            *hfp.SlcState
	Logger           *zap.Logger
	Actions          telephony.ActionSink
	Metrics          *metrics.AppMetrics
	Bus              *eventbus.Bus
	HandshakeTimeout time.Duration
	OnClose          func(*Peer)
}

// Peer 单条 SLC 的调度器。一个 Peer 对应一条链路、一个处理 goroutine：
// 命令、更新、快照请求都经由该 goroutine 串行消化，因此过程实例表与
// SlcState 无需加锁。
type Peer struct {
	id      telephony.PeerID
	link    Link
	logger  *zap.Logger
	actions telephony.ActionSink
	appm    *metrics.AppMetrics
	bus     *eventbus.Bus

	handshakeTimeout time.Duration
	onClose          func(*Peer)

	st          *hfp.SlcState
	dec         *at.StreamDecoder
	active      map[procedure.Marker]procedure.Procedure
	down        bool
	established atomic.Bool // st.Initialized 的跨 goroutine 只读镜像

	inbox   chan inboxItem
	snapC   chan chan Snapshot
	stopped chan struct{}

	connectedAt  time.Time
	commandsSeen uint64
	updatesSeen  uint64
}

// NewPeer 创建链路调度器，Start 之前不会消费任何输入
func NewPeer(p PeerParams) *Peer {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := p.HandshakeTimeout
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}
	return &Peer{
		id:               p.ID,
		link:             p.Link,
		logger:           logger,
		actions:          p.Actions,
		appm:             p.Metrics,
		bus:              p.Bus,
		handshakeTimeout: timeout,
		onClose:          p.OnClose,
		st:               p.State,
		dec:              at.NewStreamDecoder(),
		active:           make(map[procedure.Marker]procedure.Procedure),
		inbox:            make(chan inboxItem, 64),
		snapC:            make(chan chan Snapshot),
		stopped:          make(chan struct{}),
		connectedAt:      time.Now(),
	}
}

// ID 返回链路标识
func (p *Peer) ID() telephony.PeerID { return p.id }

// Remote 返回远端地址
func (p *Peer) Remote() string { return p.link.RemoteAddr().String() }

// Done 返回拆链通知通道，处理循环退出后关闭
func (p *Peer) Done() <-chan struct{} { return p.stopped }

// Established 报告 SLC 握手是否已完成（可跨 goroutine 调用）
func (p *Peer) Established() bool { return p.established.Load() }

// Close 主动拆链。实际清理在处理循环退出时完成。
func (p *Peer) Close() error { return p.link.Close() }

// Start 启动处理循环
func (p *Peer) Start() { go p.run() }

// HandleBytes 接收传输层上行的原始字节。调用方的缓冲区会被复用，
// 这里必须先复制再入队。
func (p *Peer) HandleBytes(b []byte) {
	if len(b) == 0 {
		return
	}
	dup := make([]byte, len(b))
	copy(dup, b)
	select {
	case p.inbox <- inboxItem{data: dup}:
	case <-p.stopped:
	}
}

// Deliver 把一条 AG 更新排入处理队列。更新与入站命令在同一循环里
// 顺序消化，保证下行字节次序与效果产生次序一致。
func (p *Peer) Deliver(ctx context.Context, up *telephony.AgUpdate) error {
	if up == nil {
		return nil
	}
	select {
	case p.inbox <- inboxItem{update: up}:
		return nil
	case <-p.stopped:
		return ErrPeerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryDeliver 非阻塞投递一条 AG 更新，队列满时放弃并返回 ErrInboxFull。
// 引擎回环广播必须走这里而不是 Deliver：过程步骤内同步触发的再广播
// 发生在本链路的处理 goroutine 上，该 goroutine 正是队列唯一的消费者，
// 队列满时阻塞投递等的就是自己。
func (p *Peer) TryDeliver(up *telephony.AgUpdate) error {
	if up == nil {
		return nil
	}
	select {
	case p.inbox <- inboxItem{update: up}:
		return nil
	case <-p.stopped:
		return ErrPeerClosed
	default:
		return ErrInboxFull
	}
}

// Snapshot 向处理循环索要一份状态快照
func (p *Peer) Snapshot() (Snapshot, bool) {
	reply := make(chan Snapshot, 1)
	select {
	case p.snapC <- reply:
	case <-p.stopped:
		return Snapshot{}, false
	}
	select {
	case s := <-reply:
		return s, true
	case <-p.stopped:
		return Snapshot{}, false
	}
}

func (p *Peer) run() {
	defer p.cleanup()
	hs := time.NewTimer(p.handshakeTimeout)
	defer hs.Stop()
	for {
		select {
		case it := <-p.inbox:
			p.handle(it)
			if p.down {
				return
			}
		case reply := <-p.snapC:
			reply <- p.snapshot()
		case <-hs.C:
			if !p.st.Initialized {
				if p.appm != nil {
					p.appm.HandshakeTotal.WithLabelValues("timeout").Inc()
				}
				p.shutdown("SLC 握手超时，断开链路",
					zap.String("peer", string(p.id)),
					zap.Duration("timeout", p.handshakeTimeout))
				return
			}
		case <-p.link.Done():
			return
		}
	}
}

func (p *Peer) cleanup() {
	_ = p.link.Close()
	if p.st.Initialized && p.appm != nil {
		p.appm.SlcActive.Dec()
	}
	p.bus.Publish(eventbus.Event{Kind: eventbus.EventPeerDetached, Peer: string(p.id)})
	close(p.stopped)
	if p.onClose != nil {
		p.onClose(p)
	}
	p.logger.Info("链路已拆除",
		zap.String("peer", string(p.id)),
		zap.Bool("initialized", p.st.Initialized),
		zap.Uint64("commands", p.commandsSeen),
		zap.Uint64("updates", p.updatesSeen))
}

func (p *Peer) handle(it inboxItem) {
	if it.update != nil {
		p.handleUpdate(it.update)
		return
	}
	for _, cmd := range p.dec.Feed(it.data) {
		p.handleCommand(cmd)
		if p.down {
			return
		}
	}
}

func (p *Peer) handleCommand(cmd *at.Command) {
	p.commandsSeen++
	if p.appm != nil {
		name := cmd.Name
		if cmd.Kind == at.KindInvalid {
			name = "invalid"
		}
		p.appm.HfCommandTotal.WithLabelValues(name).Inc()
	}

	marker, ok := procedure.MarkerForCommand(cmd, p.st.Initialized)
	if !ok {
		p.logger.Debug("AT 命令无法归类",
			zap.String("peer", string(p.id)), zap.String("raw", cmd.Raw))
		p.writeFailure(at.CmeOperationNotSupported)
		return
	}
	// 协商进行中的 AT+BAC 是对 +BCS 的合法答复（HFP v1.8 §4.11.3），
	// 归属在场的协商实例而非新开一个可用编解码过程。
	if marker == procedure.MarkerCodecSupport {
		if _, busy := p.active[procedure.MarkerCodecNegotiation]; busy {
			marker = procedure.MarkerCodecNegotiation
		}
	}

	inst, ok := p.active[marker]
	if !ok {
		inst = procedure.New(marker)
		p.active[marker] = inst
	}

	wasInit := p.st.Initialized
	p.apply(marker, inst, inst.HFUpdate(cmd, p.st), true)
	if !wasInit && p.st.Initialized {
		p.established.Store(true)
		if p.appm != nil {
			p.appm.HandshakeTotal.WithLabelValues("ok").Inc()
			p.appm.SlcActive.Inc()
		}
		p.bus.Publish(eventbus.Event{Kind: eventbus.EventSlcEstablished, Peer: string(p.id)})
		p.logger.Info("SLC 已建立",
			zap.String("peer", string(p.id)),
			zap.String("remote", p.Remote()),
			zap.Uint32("hf_features", uint32(p.st.HfFeatures)))
	}
}

func (p *Peer) handleUpdate(up *telephony.AgUpdate) {
	p.updatesSeen++
	if p.appm != nil {
		p.appm.AgUpdateTotal.WithLabelValues(string(up.Type)).Inc()
	}
	if !p.st.Initialized {
		p.logger.Warn("SLC 未建立，忽略 AG 更新",
			zap.String("peer", string(p.id)), zap.String("type", string(up.Type)))
		return
	}
	marker, ok := procedure.MarkerForUpdate(up)
	if !ok {
		p.logger.Warn("AG 更新无法归类",
			zap.String("peer", string(p.id)), zap.String("type", string(up.Type)))
		return
	}
	inst, ok := p.active[marker]
	if !ok {
		inst = procedure.New(marker)
		p.active[marker] = inst
	}
	p.apply(marker, inst, inst.AGUpdate(up, p.st), false)
}

// apply 落实一次过程步骤的效果：转发呼叫动作、按序写出下行、
// 以及错误路径的否定应答与握手期拆链。
func (p *Peer) apply(marker procedure.Marker, inst procedure.Procedure, req procedure.Request, fromHF bool) {
	switch req.Kind {
	case procedure.RequestNone:

	case procedure.RequestSend:
		if req.Action == nil || p.forwardAction(req.Action) {
			for _, msg := range req.Messages {
				if !p.write(msg) {
					return
				}
			}
		} else {
			// 电话栈拒绝动作：应答改为否定结果码，状态不回滚
			p.writeFailure(at.CmeAgFailure)
		}

	case procedure.RequestError:
		if p.appm != nil {
			p.appm.ProcedureErrors.WithLabelValues(marker.String()).Inc()
		}
		p.bus.Publish(eventbus.Event{
			Kind:   eventbus.EventProcedureError,
			Peer:   string(p.id),
			Detail: req.Err.Error(),
		})
		if fromHF {
			p.writeFailure(procedure.CmeOf(req.Err))
			if !p.st.Initialized {
				// 握手期内任何过程错误都视为握手失败
				if p.appm != nil {
					p.appm.HandshakeTotal.WithLabelValues("failed").Inc()
				}
				p.shutdown("SLC 握手失败，断开链路",
					zap.String("peer", string(p.id)), zap.Error(req.Err))
				return
			}
			p.logger.Debug("AT 命令被过程拒绝",
				zap.String("peer", string(p.id)),
				zap.String("marker", marker.String()), zap.Error(req.Err))
		} else {
			p.logger.Warn("AG 更新被过程拒绝",
				zap.String("peer", string(p.id)),
				zap.String("marker", marker.String()), zap.Error(req.Err))
		}
	}

	if inst.Terminated() {
		delete(p.active, marker)
	}
}

// forwardAction 同步转发呼叫动作，失败时由调用方改写否定应答
func (p *Peer) forwardAction(action *telephony.CallAction) bool {
	action.Peer = p.id
	if err := p.actions.HandleCallAction(context.Background(), action); err != nil {
		p.logger.Warn("呼叫动作被电话栈拒绝",
			zap.String("peer", string(p.id)),
			zap.String("action", string(action.Type)), zap.Error(err))
		if p.appm != nil {
			p.appm.CallActionTotal.WithLabelValues(string(action.Type), "error").Inc()
		}
		return false
	}
	if p.appm != nil {
		p.appm.CallActionTotal.WithLabelValues(string(action.Type), "ok").Inc()
	}
	p.bus.Publish(eventbus.Event{
		Kind:   eventbus.EventCallAction,
		Peer:   string(p.id),
		Detail: string(action.Type),
	})
	return true
}

func (p *Peer) write(msg at.Response) bool {
	if err := p.link.Write(msg.Encode()); err != nil {
		p.shutdown("下行写入失败，断开链路",
			zap.String("peer", string(p.id)), zap.Error(err))
		return false
	}
	return true
}

// writeFailure 按扩展错误开关回送 ERROR 或 +CME ERROR
func (p *Peer) writeFailure(code at.CmeCode) {
	if p.st.ExtendedErrors {
		p.write(at.CmeError(code))
		return
	}
	p.write(at.Error())
}

// shutdown 标记拆链并关闭底层链路，只生效一次
func (p *Peer) shutdown(reason string, fields ...zap.Field) {
	if p.down {
		return
	}
	p.down = true
	p.logger.Warn(reason, fields...)
	_ = p.link.Close()
}

func (p *Peer) snapshot() Snapshot {
	markers := make([]string, 0, len(p.active))
	for m := range p.active {
		markers = append(markers, m.String())
	}
	sort.Strings(markers)
	return Snapshot{
		ID:               string(p.id),
		Remote:           p.Remote(),
		Initialized:      p.st.Initialized,
		HfFeatures:       uint32(p.st.HfFeatures),
		Codec:            p.st.Codec.Selected.String(),
		Indicators:       p.st.Indicators.String(),
		IndicatorEvents:  p.st.IndicatorEvents,
		CallWaiting:      p.st.CallWaitingNotifications,
		CallLineIdent:    p.st.CallLineIdent,
		ExtendedErrors:   p.st.ExtendedErrors,
		InbandRing:       p.st.InbandRing,
		SpeakerGain:      p.st.SpeakerGain,
		MicrophoneGain:   p.st.MicrophoneGain,
		ActiveProcedures: markers,
		Commands:         p.commandsSeen,
		Updates:          p.updatesSeen,
		ConnectedAt:      p.connectedAt,
	}
}
