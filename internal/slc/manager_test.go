package slc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanwave/hfp-ag/internal/eventbus"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// mockInfo 模拟呼叫服务的本机信息源
type mockInfo struct{}

func (mockInfo) SubscriberNumbers() []hfp.SubscriberNumber {
	return []hfp.SubscriberNumber{{Number: "+15551230001", Service: 4}}
}

func (mockInfo) OperatorName() string { return "LanWave" }

func (mockInfo) IndicatorSnapshot() hfp.IndicatorValues {
	return hfp.IndicatorValues{Service: 1, Signal: 4, BattChg: 5}
}

// newTestManager 创建测试管理器，测试结束时拆除全部链路
func newTestManager(t *testing.T) *Manager {
	t.Helper()
	bus := eventbus.New(8)
	m := NewManager(ManagerParams{
		Actions:          &mockActions{},
		Info:             mockInfo{},
		Bus:              bus,
		AgFeatures:       testAgFeatures,
		AgCodecs:         []hfp.CodecID{hfp.CodecCVSD, hfp.CodecMSBC},
		HandshakeTimeout: time.Second,
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		m.CloseAll(ctx)
		bus.Close()
	})
	return m
}

// waitCount 轮询等待登记表达到期望的链路数
func waitCount(t *testing.T, m *Manager, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for m.Count() != want {
		if time.Now().After(deadline) {
			t.Fatalf("等待链路数 %d 超时，当前 %d", want, m.Count())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestManagerAttachLifecycle 测试接入、握手与拆链后的登记表维护
func TestManagerAttachLifecycle(t *testing.T) {
	m := newTestManager(t)
	link := newMockLink()

	peer := m.Attach(link)
	require.NotNil(t, peer)
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, 0, m.EstablishedCount())

	got, ok := m.Peer(peer.ID())
	require.True(t, ok)
	assert.Same(t, peer, got)

	driveHandshake(t, peer, link)
	assert.Equal(t, 1, m.EstablishedCount())

	require.NoError(t, peer.Close())
	select {
	case <-peer.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("拆链超时")
	}
	waitCount(t, m, 0)
	_, ok = m.Peer(peer.ID())
	assert.False(t, ok, "拆链后登记表不得残留")
}

// TestManagerBroadcastSkipsHandshaking 测试广播只面向已建立的 SLC
func TestManagerBroadcastSkipsHandshaking(t *testing.T) {
	m := newTestManager(t)
	ready := newMockLink()
	pending := newMockLink()

	readyPeer := m.Attach(ready)
	m.Attach(pending)
	driveHandshake(t, readyPeer, ready)

	err := m.BroadcastUpdate(context.Background(), telephony.NewIndicatorUpdate(hfp.IndicatorSignal, 3))
	require.NoError(t, err)

	lines := waitLines(t, ready, handshakeLineCount+1)
	assert.Equal(t, "+CIEV: 5,3", lines[len(lines)-1])
	assert.Empty(t, pending.Lines(), "握手中的链路不应收到广播")
}

// TestManagerDeliverTo 测试定向投递与未知链路错误
func TestManagerDeliverTo(t *testing.T) {
	m := newTestManager(t)
	link := newMockLink()
	peer := m.Attach(link)
	driveHandshake(t, peer, link)

	err := m.DeliverTo(context.Background(), peer.ID(), telephony.NewIndicatorUpdate(hfp.IndicatorBattChg, 2))
	require.NoError(t, err)
	lines := waitLines(t, link, handshakeLineCount+1)
	assert.Equal(t, "+CIEV: 7,2", lines[len(lines)-1])

	err = m.DeliverTo(context.Background(), telephony.PeerID("missing"), telephony.NewRingUpdate(""))
	assert.ErrorIs(t, err, ErrPeerNotFound)
}

// TestManagerSnapshots 测试快照收集覆盖全部链路
func TestManagerSnapshots(t *testing.T) {
	m := newTestManager(t)
	ready := newMockLink()
	pending := newMockLink()

	readyPeer := m.Attach(ready)
	m.Attach(pending)
	driveHandshake(t, readyPeer, ready)

	snaps := m.Snapshots()
	require.Len(t, snaps, 2)
	initialized := 0
	for _, s := range snaps {
		if s.Initialized {
			initialized++
		}
	}
	assert.Equal(t, 1, initialized)
}

// TestManagerCloseAll 测试批量拆链等待处理循环退出
func TestManagerCloseAll(t *testing.T) {
	m := newTestManager(t)
	a := newMockLink()
	b := newMockLink()
	peerA := m.Attach(a)
	peerB := m.Attach(b)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	m.CloseAll(ctx)

	for _, p := range []*Peer{peerA, peerB} {
		select {
		case <-p.Done():
		case <-time.After(time.Second):
			t.Fatal("CloseAll 后处理循环未退出")
		}
	}
	assert.True(t, a.Closed())
	assert.True(t, b.Closed())
	waitCount(t, m, 0)
}

// TestManagerBroadcastNonBlockingWhenInboxFull 某条链路的处理队列满时，
// 广播对它只做非阻塞投递并丢弃，绝不能卡住广播方：呼叫服务会在链路
// 自己的处理循环里同步触发广播，阻塞等待等的就是该循环自己。
func TestManagerBroadcastNonBlockingWhenInboxFull(t *testing.T) {
	m := newTestManager(t)
	link := newMockLink()
	p := NewPeer(PeerParams{
		ID:    "stalled",
		Link:  link,
		State: hfp.NewSlcState(hfp.SlcParams{AgFeatures: testAgFeatures}),
	})
	// 不启动处理循环，模拟一条已建立但消费停滞的链路
	p.established.Store(true)
	for {
		if err := p.TryDeliver(telephony.NewIndicatorUpdate(hfp.IndicatorSignal, 3)); err != nil {
			require.ErrorIs(t, err, ErrInboxFull)
			break
		}
	}
	m.peers.Store(p.ID(), p)
	defer m.peers.Delete(p.ID())

	done := make(chan error, 1)
	go func() {
		done <- m.BroadcastUpdate(context.Background(), telephony.NewIndicatorUpdate(hfp.IndicatorSignal, 2))
	}()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrInboxFull)
	case <-time.After(time.Second):
		t.Fatal("满队列链路上的广播不应阻塞")
	}
}
