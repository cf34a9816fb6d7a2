package slc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/lanwave/hfp-ag/internal/eventbus"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/metrics"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// ErrPeerNotFound 指定链路不存在或已拆除
var ErrPeerNotFound = errors.New("slc: peer not found")

// ManagerParams 创建 SLC 管理器所需的静态配置与协作方
type ManagerParams struct {
	Logger           *zap.Logger
	Actions          telephony.ActionSink
	Info             telephony.InfoSource
	Metrics          *metrics.AppMetrics
	Bus              *eventbus.Bus
	AgFeatures       hfp.AgFeatures
	AgCodecs         []hfp.CodecID
	Registry         *hfp.HfIndicatorRegistry
	HandshakeTimeout time.Duration
}

// Manager 维护全部在线链路的登记表。链路由传输层接入后经 Attach 交给
// 管理器托管；电话栈的状态更新经 BroadcastUpdate 推给每条已建立的 SLC。
type Manager struct {
	logger  *zap.Logger
	actions telephony.ActionSink
	info    telephony.InfoSource
	appm    *metrics.AppMetrics
	bus     *eventbus.Bus

	agFeatures       hfp.AgFeatures
	agCodecs         []hfp.CodecID
	registry         *hfp.HfIndicatorRegistry
	handshakeTimeout time.Duration

	peers *xsync.MapOf[telephony.PeerID, *Peer]
}

// NewManager 创建 SLC 管理器
func NewManager(p ManagerParams) *Manager {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		logger:           logger,
		actions:          p.Actions,
		info:             p.Info,
		appm:             p.Metrics,
		bus:              p.Bus,
		agFeatures:       p.AgFeatures,
		agCodecs:         p.AgCodecs,
		registry:         p.Registry,
		handshakeTimeout: p.HandshakeTimeout,
		peers:            xsync.NewMapOf[telephony.PeerID, *Peer](),
	}
}

// Attach 接管一条已建立的字节链路：创建连接状态与调度器并启动处理循环。
// 返回的 Peer 已在登记表中，拆链时自动移除。
func (m *Manager) Attach(link Link) *Peer {
	params := hfp.SlcParams{
		AgFeatures: m.agFeatures,
		AgCodecs:   m.agCodecs,
		Registry:   m.registry,
	}
	if m.info != nil {
		params.Indicators = m.info.IndicatorSnapshot()
		params.OperatorName = m.info.OperatorName()
		params.SubscriberNumbers = m.info.SubscriberNumbers()
	}

	id := telephony.PeerID(uuid.NewString())
	peer := NewPeer(PeerParams{
		ID:               id,
		Link:             link,
		State:            hfp.NewSlcState(params),
		Logger:           m.logger,
		Actions:          m.actions,
		Metrics:          m.appm,
		Bus:              m.bus,
		HandshakeTimeout: m.handshakeTimeout,
		OnClose: func(p *Peer) {
			m.peers.Delete(p.ID())
		},
	})
	m.peers.Store(id, peer)
	m.bus.Publish(eventbus.Event{
		Kind:   eventbus.EventPeerAttached,
		Peer:   string(id),
		Detail: peer.Remote(),
	})
	m.logger.Info("链路接入，开始 SLC 握手",
		zap.String("peer", string(id)), zap.String("remote", peer.Remote()))
	peer.Start()
	return peer
}

// Peer 按标识查找链路
func (m *Manager) Peer(id telephony.PeerID) (*Peer, bool) {
	return m.peers.Load(id)
}

// Count 返回当前登记的链路数
func (m *Manager) Count() int { return m.peers.Size() }

// EstablishedCount 返回握手已完成的链路数
func (m *Manager) EstablishedCount() int {
	n := 0
	m.peers.Range(func(_ telephony.PeerID, p *Peer) bool {
		if p.Established() {
			n++
		}
		return true
	})
	return n
}

// Snapshots 收集全部链路的状态快照
func (m *Manager) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, m.peers.Size())
	m.peers.Range(func(_ telephony.PeerID, p *Peer) bool {
		if s, ok := p.Snapshot(); ok {
			out = append(out, s)
		}
		return true
	})
	return out
}

// BroadcastUpdate 把一条 AG 更新推给每条已建立的 SLC。
// 握手尚未完成的链路直接跳过：更新面向的是可用连接，不是握手中的。
// 投递是非阻塞的：呼叫服务可能在链路自己的处理循环里同步触发广播
// （HandleCallAction 内的指示器跟变），阻塞等待满队列会让该循环等待
// 自己。队列满的链路丢弃本条更新并记警告。
func (m *Manager) BroadcastUpdate(ctx context.Context, up *telephony.AgUpdate) error {
	if up == nil {
		return nil
	}
	var errs []error
	m.peers.Range(func(_ telephony.PeerID, p *Peer) bool {
		if !p.Established() {
			return true
		}
		if err := p.TryDeliver(up); err != nil && !errors.Is(err, ErrPeerClosed) {
			m.logger.Warn("链路队列已满，丢弃广播更新",
				zap.String("peer", string(p.ID())),
				zap.String("type", string(up.Type)))
			errs = append(errs, err)
		}
		return true
	})
	m.bus.Publish(eventbus.Event{
		Kind:   eventbus.EventUpdateBroadcast,
		Detail: string(up.Type),
	})
	return errors.Join(errs...)
}

// DeliverTo 把一条 AG 更新推给指定链路
func (m *Manager) DeliverTo(ctx context.Context, id telephony.PeerID, up *telephony.AgUpdate) error {
	peer, ok := m.peers.Load(id)
	if !ok {
		return ErrPeerNotFound
	}
	return peer.Deliver(ctx, up)
}

// CloseAll 拆除全部链路并等待处理循环退出，受 ctx 期限约束
func (m *Manager) CloseAll(ctx context.Context) {
	var waiting []*Peer
	m.peers.Range(func(_ telephony.PeerID, p *Peer) bool {
		_ = p.Close()
		waiting = append(waiting, p)
		return true
	})
	for _, p := range waiting {
		select {
		case <-p.Done():
		case <-ctx.Done():
			return
		}
	}
}
