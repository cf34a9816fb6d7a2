package callsim

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/lanwave/hfp-ag/internal/config"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// mockSink 收集模拟器广播的 AG 更新
type mockSink struct {
	mu  sync.Mutex
	ups []*telephony.AgUpdate
}

func (k *mockSink) BroadcastUpdate(_ context.Context, up *telephony.AgUpdate) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.ups = append(k.ups, up)
	return nil
}

func (k *mockSink) Updates() []*telephony.AgUpdate {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]*telephony.AgUpdate, len(k.ups))
	copy(out, k.ups)
	return out
}

func (k *mockSink) Reset() {
	k.mu.Lock()
	k.ups = nil
	k.mu.Unlock()
}

func (k *mockSink) Rings() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	n := 0
	for _, up := range k.ups {
		if up.Type == telephony.UpdateRing {
			n++
		}
	}
	return n
}

// newTestSim 创建定时器加速过的模拟器
func newTestSim() (*Simulator, *mockSink) {
	sink := &mockSink{}
	s := New(cfgpkg.CallsimConfig{
		OperatorName:     "LanWave",
		SubscriberNumber: "+15551230001",
		RingInterval:     20 * time.Millisecond,
		ConnectDelay:     30 * time.Millisecond,
		Signal:           4,
		Battery:          5,
		Service:          true,
	}, nil)
	s.SetSink(sink)
	return s, sink
}

// waitUpdates 轮询等待 sink 至少收到 n 条更新
func waitUpdates(t *testing.T, sink *mockSink, n int) []*telephony.AgUpdate {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		ups := sink.Updates()
		if len(ups) >= n {
			return ups
		}
		if time.Now().After(deadline) {
			t.Fatalf("等待 %d 条更新超时，已有 %d 条", n, len(ups))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func act(s *Simulator, a *telephony.CallAction) error {
	return s.HandleCallAction(context.Background(), a)
}

// TestSimulatorInfoSource 测试本机信息源接口
func TestSimulatorInfoSource(t *testing.T) {
	s, _ := newTestSim()

	assert.Equal(t, []hfp.SubscriberNumber{{Number: "+15551230001", Service: 4}}, s.SubscriberNumbers())
	assert.Equal(t, "LanWave", s.OperatorName())
	assert.Equal(t, hfp.IndicatorValues{Service: 1, Signal: 4, BattChg: 5}, s.IndicatorSnapshot())

	// 越界配置回退到默认档位
	odd := New(cfgpkg.CallsimConfig{Signal: 9, Battery: -1}, nil)
	vals := odd.IndicatorSnapshot()
	assert.Equal(t, 4, vals.Signal)
	assert.Equal(t, 5, vals.BattChg)
	assert.Nil(t, odd.SubscriberNumbers(), "未配置号码时无 +CNUM 内容")
}

// TestSimulatorIncomingAnswer 测试来电-接听的更新序列与振铃停止
func TestSimulatorIncomingAnswer(t *testing.T) {
	s, sink := newTestSim()

	require.NoError(t, s.IncomingCall("+15557654321"))
	ups := waitUpdates(t, sink, 2)
	assert.Equal(t, telephony.NewIndicatorUpdate(hfp.IndicatorCallSetup, hfp.CallSetupIncoming), ups[0])
	assert.Equal(t, telephony.NewRingUpdate("+15557654321"), ups[1])

	sink.Reset()
	require.NoError(t, act(s, &telephony.CallAction{Type: telephony.ActionAnswer}))
	ups = waitUpdates(t, sink, 2)
	// 接听时 call 先于 callsetup 下发
	assert.Equal(t, telephony.NewIndicatorUpdate(hfp.IndicatorCall, 1), ups[0])
	assert.Equal(t, telephony.NewIndicatorUpdate(hfp.IndicatorCallSetup, hfp.CallSetupNone), ups[1])

	st := s.Snapshot()
	require.NotNil(t, st.Active)
	assert.Equal(t, "+15557654321", st.Active.Number)
	assert.Nil(t, st.Setup)
	assert.Equal(t, hfp.CallSetupNone, st.SetupPhase)

	// 场景代次变化后振铃循环退出
	time.Sleep(60 * time.Millisecond)
	before := sink.Rings()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, before, sink.Rings(), "接听后不得继续振铃")
}

// TestSimulatorAnswerRejections 测试接听动作的状态校验
func TestSimulatorAnswerRejections(t *testing.T) {
	s, _ := newTestSim()
	assert.Error(t, act(s, &telephony.CallAction{Type: telephony.ActionAnswer}), "无来电可接")

	require.NoError(t, s.IncomingCall("+15557654321"))
	require.NoError(t, act(s, &telephony.CallAction{Type: telephony.ActionAnswer}))

	// 通话中再来电进入等待，等待呼叫不能用 Answer 接入
	require.NoError(t, s.IncomingCall("+15550002"))
	assert.Error(t, act(s, &telephony.CallAction{Type: telephony.ActionAnswer}))
}

// TestSimulatorDialFlow 测试拨号、对端振铃推进与对端接听
func TestSimulatorDialFlow(t *testing.T) {
	s, sink := newTestSim()

	require.NoError(t, act(s, &telephony.CallAction{
		Type: telephony.ActionInitiateCall,
		Dial: &telephony.DialPayload{Target: "+15557654321"},
	}))
	ups := waitUpdates(t, sink, 1)
	assert.Equal(t, telephony.NewIndicatorUpdate(hfp.IndicatorCallSetup, hfp.CallSetupDialing), ups[0])

	// 连接延迟之后推进到对端振铃
	ups = waitUpdates(t, sink, 2)
	assert.Equal(t, telephony.NewIndicatorUpdate(hfp.IndicatorCallSetup, hfp.CallSetupAlerting), ups[1])

	sink.Reset()
	require.NoError(t, s.RemoteAnswer())
	ups = waitUpdates(t, sink, 2)
	assert.Equal(t, telephony.NewIndicatorUpdate(hfp.IndicatorCall, 1), ups[0])
	assert.Equal(t, telephony.NewIndicatorUpdate(hfp.IndicatorCallSetup, hfp.CallSetupNone), ups[1])

	st := s.Snapshot()
	require.NotNil(t, st.Active)
	assert.Equal(t, "+15557654321", st.Active.Number)
	assert.Equal(t, "+15557654321", st.LastDialed)
}

// TestSimulatorDialRejections 测试拨号动作的状态与参数校验
func TestSimulatorDialRejections(t *testing.T) {
	s, _ := newTestSim()

	assert.Error(t, act(s, &telephony.CallAction{Type: telephony.ActionInitiateCall}), "空载荷")
	assert.Error(t, act(s, &telephony.CallAction{
		Type: telephony.ActionInitiateCall,
		Dial: &telephony.DialPayload{},
	}), "空号码")
	assert.Error(t, act(s, &telephony.CallAction{
		Type: telephony.ActionInitiateCall,
		Dial: &telephony.DialPayload{Redial: true},
	}), "无可重拨号码")
	assert.Error(t, act(s, &telephony.CallAction{
		Type: telephony.ActionInitiateCall,
		Dial: &telephony.DialPayload{Target: "3", Memory: true},
	}), "记忆槽位为空")

	// 通话中不允许再次发起
	require.NoError(t, s.IncomingCall("+15557654321"))
	require.NoError(t, act(s, &telephony.CallAction{Type: telephony.ActionAnswer}))
	assert.Error(t, act(s, &telephony.CallAction{
		Type: telephony.ActionInitiateCall,
		Dial: &telephony.DialPayload{Target: "5550123"},
	}))
}

// TestSimulatorMemoryAndRedial 测试记忆拨号与重拨
func TestSimulatorMemoryAndRedial(t *testing.T) {
	s, _ := newTestSim()

	assert.Error(t, s.SetMemory(0, "5550123"), "槽位必须为正")
	require.NoError(t, s.SetMemory(2, "5550123"))

	require.NoError(t, act(s, &telephony.CallAction{
		Type: telephony.ActionInitiateCall,
		Dial: &telephony.DialPayload{Target: "2", Memory: true},
	}))
	st := s.Snapshot()
	require.NotNil(t, st.Setup)
	assert.Equal(t, "5550123", st.Setup.Number)
	assert.Equal(t, "5550123", st.LastDialed)

	require.NoError(t, act(s, &telephony.CallAction{Type: telephony.ActionHangUp}))
	require.NoError(t, act(s, &telephony.CallAction{
		Type: telephony.ActionInitiateCall,
		Dial: &telephony.DialPayload{Redial: true},
	}))
	st = s.Snapshot()
	require.NotNil(t, st.Setup)
	assert.Equal(t, "5550123", st.Setup.Number)

	// 清空槽位后记忆拨号失败
	require.NoError(t, act(s, &telephony.CallAction{Type: telephony.ActionHangUp}))
	require.NoError(t, s.SetMemory(2, ""))
	assert.Error(t, act(s, &telephony.CallAction{
		Type: telephony.ActionInitiateCall,
		Dial: &telephony.DialPayload{Target: "2", Memory: true},
	}))
}

// TestSimulatorCallWaitingFlow 测试呼叫等待通知与 CHLD=2 切换
func TestSimulatorCallWaitingFlow(t *testing.T) {
	s, sink := newTestSim()

	require.NoError(t, s.IncomingCall("+15557654321"))
	require.NoError(t, act(s, &telephony.CallAction{Type: telephony.ActionAnswer}))
	sink.Reset()

	require.NoError(t, s.IncomingCall("+15550002"))
	ups := waitUpdates(t, sink, 2)
	assert.Equal(t, telephony.NewIndicatorUpdate(hfp.IndicatorCallSetup, hfp.CallSetupIncoming), ups[0])
	assert.Equal(t, telephony.UpdateCallWaiting, ups[1].Type)
	assert.Equal(t, "+15550002", ups[1].CallWaiting.Number)
	assert.Equal(t, 0, sink.Rings(), "呼叫等待不触发振铃循环")

	sink.Reset()
	require.NoError(t, act(s, &telephony.CallAction{
		Type: telephony.ActionHold,
		Hold: &telephony.HoldPayload{Op: hfp.HoldOp{Action: hfp.HoldActiveAcceptNext}},
	}))
	ups = waitUpdates(t, sink, 2)
	assert.Equal(t, telephony.NewIndicatorUpdate(hfp.IndicatorCallSetup, hfp.CallSetupNone), ups[0])
	assert.Equal(t, telephony.NewIndicatorUpdate(hfp.IndicatorCallHeld, hfp.CallHeldActiveAndHeld), ups[1])

	st := s.Snapshot()
	require.NotNil(t, st.Active)
	require.NotNil(t, st.Held)
	assert.Equal(t, "+15550002", st.Active.Number)
	assert.Equal(t, "+15557654321", st.Held.Number)
}

// TestSimulatorHoldOperations 测试其余保持操作的状态迁移
func TestSimulatorHoldOperations(t *testing.T) {
	hold := func(op hfp.HoldOp) *telephony.CallAction {
		return &telephony.CallAction{Type: telephony.ActionHold, Hold: &telephony.HoldPayload{Op: op}}
	}

	// 活动+保持，私聊交换后 ECT 接通两路
	s, sink := newTestSim()
	require.NoError(t, s.IncomingCall("+15557654321"))
	require.NoError(t, act(s, &telephony.CallAction{Type: telephony.ActionAnswer}))
	require.NoError(t, s.IncomingCall("+15550002"))
	require.NoError(t, act(s, hold(hfp.HoldOp{Action: hfp.HoldActiveAcceptNext})))

	sink.Reset()
	require.NoError(t, act(s, hold(hfp.HoldOp{Action: hfp.HoldPrivateConsultation, Index: 2})))
	st := s.Snapshot()
	assert.Equal(t, "+15557654321", st.Active.Number, "私聊把保持呼叫换到前台")
	assert.Equal(t, "+15550002", st.Held.Number)
	assert.Empty(t, sink.Updates(), "指示器取值未变则不广播")

	require.NoError(t, act(s, hold(hfp.HoldOp{Action: hfp.HoldConnectTwoCalls})))
	ups := waitUpdates(t, sink, 2)
	assert.Equal(t, telephony.NewIndicatorUpdate(hfp.IndicatorCall, 0), ups[0])
	assert.Equal(t, telephony.NewIndicatorUpdate(hfp.IndicatorCallHeld, hfp.CallHeldNone), ups[1])
	st = s.Snapshot()
	assert.Nil(t, st.Active)
	assert.Nil(t, st.Held)

	// 等待呼叫的释放与接入
	s2, _ := newTestSim()
	require.NoError(t, s2.IncomingCall("+15557654321"))
	require.NoError(t, act(s2, &telephony.CallAction{Type: telephony.ActionAnswer}))
	require.NoError(t, s2.IncomingCall("+15550002"))
	require.NoError(t, act(s2, hold(hfp.HoldOp{Action: hfp.HoldReleaseActiveAcceptNext})))
	st = s2.Snapshot()
	require.NotNil(t, st.Active)
	assert.Equal(t, "+15550002", st.Active.Number)
	assert.Nil(t, st.Waiting)

	// 状态不满足的操作一律报错
	s3, _ := newTestSim()
	assert.Error(t, act(s3, hold(hfp.HoldOp{Action: hfp.HoldReleaseAllHeld})))
	assert.Error(t, act(s3, hold(hfp.HoldOp{Action: hfp.HoldAddToConversation})))
	assert.Error(t, act(s3, hold(hfp.HoldOp{Action: hfp.HoldConnectTwoCalls})))
	assert.Error(t, act(s3, hold(hfp.HoldOp{Action: hfp.HoldReleaseSpecified, Index: 3})))
	assert.Error(t, act(s3, hold(hfp.HoldOp{Action: hfp.HoldPrivateConsultation, Index: 2})))
}

// TestSimulatorDtmf 测试 DTMF 记录
func TestSimulatorDtmf(t *testing.T) {
	s, sink := newTestSim()

	assert.Error(t, act(s, &telephony.CallAction{
		Type: telephony.ActionTransmitDtmf,
		Dtmf: &telephony.DtmfPayload{Code: '5'},
	}), "无活动呼叫")

	require.NoError(t, s.IncomingCall("+15557654321"))
	require.NoError(t, act(s, &telephony.CallAction{Type: telephony.ActionAnswer}))
	sink.Reset()

	require.NoError(t, act(s, &telephony.CallAction{
		Type: telephony.ActionTransmitDtmf,
		Dtmf: &telephony.DtmfPayload{Code: '#'},
	}))
	assert.Equal(t, "#", s.Snapshot().LastDtmf)
	assert.Empty(t, sink.Updates(), "DTMF 不改动指示器")
}

// TestSimulatorIndicatorAdjustments 测试网络侧指示器调整与差量广播
func TestSimulatorIndicatorAdjustments(t *testing.T) {
	s, sink := newTestSim()

	require.NoError(t, s.SetSignal(2))
	ups := waitUpdates(t, sink, 1)
	assert.Equal(t, telephony.NewIndicatorUpdate(hfp.IndicatorSignal, 2), ups[0])

	sink.Reset()
	require.NoError(t, s.SetSignal(2))
	assert.Empty(t, sink.Updates(), "取值未变不重复广播")

	assert.Error(t, s.SetSignal(9))
	assert.Error(t, s.SetBattery(-1))

	sink.Reset()
	require.NoError(t, s.SetBattery(1))
	s.SetService(false)
	s.SetRoam(true)
	ups = waitUpdates(t, sink, 3)
	assert.Equal(t, telephony.NewIndicatorUpdate(hfp.IndicatorBattChg, 1), ups[0])
	assert.Equal(t, telephony.NewIndicatorUpdate(hfp.IndicatorService, 0), ups[1])
	assert.Equal(t, telephony.NewIndicatorUpdate(hfp.IndicatorRoam, 1), ups[2])
}

// TestSimulatorDirectUpdates 测试非指示器类更新的推送
func TestSimulatorDirectUpdates(t *testing.T) {
	s, sink := newTestSim()

	s.SetOperator("Orbit")
	assert.Equal(t, "Orbit", s.OperatorName())
	s.SetInbandRing(false)
	require.NoError(t, s.SetSpeakerGain(9))
	require.NoError(t, s.SetMicrophoneGain(3))
	s.StartCodecNegotiation(hfp.CodecMSBC)

	assert.Error(t, s.SetSpeakerGain(16))
	assert.Error(t, s.SetMicrophoneGain(-1))

	ups := waitUpdates(t, sink, 5)
	assert.Equal(t, telephony.UpdateNetworkOperator, ups[0].Type)
	assert.Equal(t, "Orbit", ups[0].Operator.Name)
	assert.Equal(t, telephony.UpdateInbandRing, ups[1].Type)
	assert.False(t, ups[1].InbandRing.Enabled)
	assert.Equal(t, telephony.UpdateSpeakerGain, ups[2].Type)
	assert.Equal(t, 9, ups[2].Gain.Level)
	assert.Equal(t, telephony.UpdateMicrophoneGain, ups[3].Type)
	assert.Equal(t, 3, ups[3].Gain.Level)
	assert.Equal(t, telephony.UpdateStartCodecNegotiation, ups[4].Type)
	assert.Equal(t, hfp.CodecMSBC, ups[4].Codec.Codec)
}

// TestSimulatorRemoteHangup 测试对端挂断清空全部呼叫
func TestSimulatorRemoteHangup(t *testing.T) {
	s, sink := newTestSim()
	assert.Error(t, s.RemoteHangup(), "无呼叫可挂断")

	require.NoError(t, s.IncomingCall("+15557654321"))
	require.NoError(t, act(s, &telephony.CallAction{Type: telephony.ActionAnswer}))
	sink.Reset()

	require.NoError(t, s.RemoteHangup())
	ups := waitUpdates(t, sink, 1)
	assert.Equal(t, telephony.NewIndicatorUpdate(hfp.IndicatorCall, 0), ups[0])
	st := s.Snapshot()
	assert.Nil(t, st.Active)
	assert.Nil(t, st.Setup)
}

// TestSimulatorUnknownAction 测试未知动作与空动作
func TestSimulatorUnknownAction(t *testing.T) {
	s, sink := newTestSim()
	assert.NoError(t, act(s, nil))
	assert.Error(t, act(s, &telephony.CallAction{Type: telephony.CallActionType("Bogus")}))
	assert.Empty(t, sink.Updates())
}
