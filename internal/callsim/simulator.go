// Package callsim 提供一个进程内的电话栈模拟器：维护一部虚拟话机的
// 网络与呼叫状态，受理引擎转发的呼叫动作，并把状态变化广播为 AG 更新。
// 运维 API 的测试台通过它制造来电、信号变化等场景。
package callsim

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	cfgpkg "github.com/lanwave/hfp-ag/internal/config"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

const (
	defaultRingInterval = 3 * time.Second
	defaultConnectDelay = 2 * time.Second
)

// call 一路呼叫
type call struct {
	ID     string `json:"id"`
	Number string `json:"number"`
}

// indicatorOrder 指示器广播次序。接听时 call 先于 callsetup 下发，
// 与 HFP v1.8 §4.13 的时序示例一致。
var indicatorOrder = []hfp.Indicator{
	hfp.IndicatorService,
	hfp.IndicatorCall,
	hfp.IndicatorCallSetup,
	hfp.IndicatorCallHeld,
	hfp.IndicatorSignal,
	hfp.IndicatorRoam,
	hfp.IndicatorBattChg,
}

// Simulator 电话栈模拟器。实现 telephony.ActionSink 与
// telephony.InfoSource；更新出口（UpdateSink）在引擎就绪后经
// SetSink 注入。
type Simulator struct {
	logger *zap.Logger
	cfg    cfgpkg.CallsimConfig

	mu   sync.Mutex
	sink telephony.UpdateSink

	service  bool
	signal   int
	battery  int
	roam     bool
	operator string

	active  *call
	held    *call
	waiting *call
	setup   *call
	phase   int // CallSetup* 取值，仅对 setup 有效

	memory     map[int]string
	lastDialed string
	lastDtmf   byte

	// seq 呼叫场景代次。每次场景变化自增，振铃循环与拨号推进
	// 定时器据此识别自己已经过时。
	seq uint64

	prev map[hfp.Indicator]int // 上次广播的指示器取值
}

// New 创建模拟器。sink 可先为 nil，引擎建好后用 SetSink 注入。
func New(cfg cfgpkg.CallsimConfig, logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Simulator{
		logger:   logger,
		cfg:      cfg,
		service:  cfg.Service,
		signal:   cfg.Signal,
		battery:  cfg.Battery,
		roam:     cfg.Roam,
		operator: cfg.OperatorName,
		memory:   make(map[int]string),
		prev:     make(map[hfp.Indicator]int),
	}
	if !hfp.IndicatorSignal.InRange(s.signal) {
		s.signal = 4
	}
	if !hfp.IndicatorBattChg.InRange(s.battery) {
		s.battery = 5
	}
	// 基线定格，首次 sync 只广播真正的变化
	for ind, v := range s.values() {
		s.prev[ind] = v
	}
	return s
}

// SetSink 注入更新出口
func (s *Simulator) SetSink(sink telephony.UpdateSink) {
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
}

// ---- telephony.InfoSource ----

// SubscriberNumbers 本机号码
func (s *Simulator) SubscriberNumbers() []hfp.SubscriberNumber {
	if s.cfg.SubscriberNumber == "" {
		return nil
	}
	return []hfp.SubscriberNumber{{Number: s.cfg.SubscriberNumber, Service: 4}}
}

// OperatorName 当前注册网络名称
func (s *Simulator) OperatorName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.operator
}

// IndicatorSnapshot 当前指示器取值（链路接入时的初值）
func (s *Simulator) IndicatorSnapshot() hfp.IndicatorValues {
	s.mu.Lock()
	defer s.mu.Unlock()
	var vals hfp.IndicatorValues
	for ind, v := range s.values() {
		_ = vals.Set(ind, v)
	}
	return vals
}

// ---- telephony.ActionSink ----

// HandleCallAction 受理引擎转发的呼叫动作。过程侧已按指示器状态把过
// 关，这里按话机真实状态再核一遍，拒绝即返回错误、不产生任何更新。
func (s *Simulator) HandleCallAction(_ context.Context, a *telephony.CallAction) error {
	if a == nil {
		return nil
	}
	s.mu.Lock()
	var ups []*telephony.AgUpdate
	var err error
	switch a.Type {
	case telephony.ActionAnswer:
		ups, err = s.answerLocked()
	case telephony.ActionHangUp:
		ups, err = s.hangupLocked()
	case telephony.ActionInitiateCall:
		ups, err = s.dialLocked(a.Dial)
	case telephony.ActionTransmitDtmf:
		err = s.dtmfLocked(a.Dtmf)
	case telephony.ActionHold:
		ups, err = s.holdLocked(a.Hold)
	default:
		err = fmt.Errorf("callsim: unknown action %q", a.Type)
	}
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn("呼叫动作被拒绝",
			zap.String("action", string(a.Type)), zap.Error(err))
		return err
	}
	s.flush(ups)
	s.logger.Info("呼叫动作完成",
		zap.String("action", string(a.Type)), zap.String("peer", string(a.Peer)))
	return nil
}

func (s *Simulator) answerLocked() ([]*telephony.AgUpdate, error) {
	if s.setup == nil || s.phase != hfp.CallSetupIncoming {
		return nil, fmt.Errorf("callsim: no incoming call to answer")
	}
	if s.active != nil {
		return nil, fmt.Errorf("callsim: line busy")
	}
	s.seq++
	s.active = s.setup
	s.setup = nil
	s.phase = hfp.CallSetupNone
	return s.syncLocked(), nil
}

func (s *Simulator) hangupLocked() ([]*telephony.AgUpdate, error) {
	if s.active == nil && s.setup == nil && s.waiting == nil {
		return nil, fmt.Errorf("callsim: no call in progress")
	}
	s.seq++
	s.active = nil
	s.setup = nil
	s.waiting = nil
	s.phase = hfp.CallSetupNone
	return s.syncLocked(), nil
}

func (s *Simulator) dialLocked(d *telephony.DialPayload) ([]*telephony.AgUpdate, error) {
	if d == nil {
		return nil, fmt.Errorf("callsim: empty dial request")
	}
	if s.setup != nil || s.waiting != nil {
		return nil, fmt.Errorf("callsim: call setup already in progress")
	}
	if s.active != nil {
		return nil, fmt.Errorf("callsim: line busy")
	}
	var number string
	switch {
	case d.Redial:
		if s.lastDialed == "" {
			return nil, fmt.Errorf("callsim: no number to redial")
		}
		number = s.lastDialed
	case d.Memory:
		slot, err := strconv.Atoi(d.Target)
		if err != nil || slot <= 0 {
			return nil, fmt.Errorf("callsim: bad memory slot %q", d.Target)
		}
		n, ok := s.memory[slot]
		if !ok {
			return nil, fmt.Errorf("callsim: memory slot %d is empty", slot)
		}
		number = n
	default:
		if d.Target == "" {
			return nil, fmt.Errorf("callsim: empty dial target")
		}
		number = d.Target
	}
	s.seq++
	s.setup = &call{ID: uuid.NewString(), Number: number}
	s.phase = hfp.CallSetupDialing
	s.lastDialed = number
	s.scheduleAlerting(s.seq)
	return s.syncLocked(), nil
}

func (s *Simulator) dtmfLocked(d *telephony.DtmfPayload) error {
	if d == nil {
		return fmt.Errorf("callsim: empty dtmf request")
	}
	if s.active == nil {
		return fmt.Errorf("callsim: no active call for dtmf")
	}
	s.lastDtmf = d.Code
	s.logger.Debug("下发 DTMF", zap.String("code", string(d.Code)))
	return nil
}

func (s *Simulator) holdLocked(h *telephony.HoldPayload) ([]*telephony.AgUpdate, error) {
	if h == nil {
		return nil, fmt.Errorf("callsim: empty hold request")
	}
	op := h.Op
	switch op.Action {
	case hfp.HoldReleaseAllHeld:
		if s.waiting == nil && s.held == nil {
			return nil, fmt.Errorf("callsim: nothing held or waiting to release")
		}
		s.seq++
		s.waiting = nil
		s.held = nil

	case hfp.HoldReleaseActiveAcceptNext:
		if s.waiting == nil && s.held == nil {
			return nil, fmt.Errorf("callsim: no waiting or held call to accept")
		}
		s.seq++
		if s.waiting != nil {
			s.active = s.waiting
			s.waiting = nil
		} else {
			s.active = s.held
			s.held = nil
		}

	case hfp.HoldReleaseSpecified:
		s.seq++
		switch op.Index {
		case 1:
			if s.active == nil {
				return nil, fmt.Errorf("callsim: no call at index 1")
			}
			s.active = nil
		case 2:
			if s.held == nil {
				return nil, fmt.Errorf("callsim: no call at index 2")
			}
			s.held = nil
		default:
			return nil, fmt.Errorf("callsim: no call at index %d", op.Index)
		}

	case hfp.HoldActiveAcceptNext:
		if s.active == nil && s.waiting == nil && s.held == nil {
			return nil, fmt.Errorf("callsim: no call to hold or accept")
		}
		old := s.active
		s.seq++
		switch {
		case s.waiting != nil:
			if old != nil && s.held != nil {
				return nil, fmt.Errorf("callsim: held line occupied")
			}
			s.active = s.waiting
			s.waiting = nil
			if old != nil {
				s.held = old
			}
		case s.held != nil:
			s.active = s.held
			s.held = old
		default:
			s.held = old
			s.active = nil
		}

	case hfp.HoldPrivateConsultation:
		switch op.Index {
		case 1:
			if s.active == nil {
				return nil, fmt.Errorf("callsim: no call at index 1")
			}
			// 已与索引 1 的呼叫独占通话，其余在保持中
		case 2:
			if s.held == nil {
				return nil, fmt.Errorf("callsim: no call at index 2")
			}
			old := s.active
			s.seq++
			s.active = s.held
			s.held = old
		default:
			return nil, fmt.Errorf("callsim: no call at index %d", op.Index)
		}

	case hfp.HoldAddToConversation:
		if s.active == nil || (s.held == nil && s.waiting == nil) {
			return nil, fmt.Errorf("callsim: nothing to join")
		}
		s.seq++
		s.held = nil
		s.waiting = nil

	case hfp.HoldConnectTwoCalls:
		if s.active == nil || s.held == nil {
			return nil, fmt.Errorf("callsim: transfer needs an active and a held call")
		}
		s.seq++
		s.active = nil
		s.held = nil

	default:
		return nil, fmt.Errorf("callsim: unknown hold action %v", op.Action)
	}
	return s.syncLocked(), nil
}

// ---- 测试台操作（运维 API 调用）----

// IncomingCall 制造一路来电。已有活动呼叫时表现为呼叫等待。
func (s *Simulator) IncomingCall(number string) error {
	if number == "" {
		return fmt.Errorf("callsim: empty caller number")
	}
	s.mu.Lock()
	if s.setup != nil || s.waiting != nil {
		s.mu.Unlock()
		return fmt.Errorf("callsim: call setup already in progress")
	}
	s.seq++
	seq := s.seq
	c := &call{ID: uuid.NewString(), Number: number}
	var ups []*telephony.AgUpdate
	ringing := false
	if s.active != nil {
		s.waiting = c
		ups = s.syncLocked()
		ups = append(ups, &telephony.AgUpdate{
			Type:        telephony.UpdateCallWaiting,
			CallWaiting: &telephony.CallWaitingPayload{Number: number},
		})
	} else {
		s.setup = c
		s.phase = hfp.CallSetupIncoming
		ups = s.syncLocked()
		ringing = true
	}
	s.mu.Unlock()
	s.flush(ups)
	if ringing {
		go s.ringLoop(number, seq)
	}
	s.logger.Info("模拟来电", zap.String("number", number), zap.Bool("waiting", !ringing))
	return nil
}

// RemoteAnswer 对端接听本机拨出的呼叫
func (s *Simulator) RemoteAnswer() error {
	s.mu.Lock()
	if s.setup == nil || (s.phase != hfp.CallSetupDialing && s.phase != hfp.CallSetupAlerting) {
		s.mu.Unlock()
		return fmt.Errorf("callsim: no outgoing call to answer")
	}
	s.seq++
	s.active = s.setup
	s.setup = nil
	s.phase = hfp.CallSetupNone
	ups := s.syncLocked()
	s.mu.Unlock()
	s.flush(ups)
	s.logger.Info("对端已接听")
	return nil
}

// RemoteHangup 对端挂断，全部呼叫结束
func (s *Simulator) RemoteHangup() error {
	s.mu.Lock()
	if s.active == nil && s.setup == nil && s.waiting == nil && s.held == nil {
		s.mu.Unlock()
		return fmt.Errorf("callsim: no call in progress")
	}
	s.seq++
	s.active = nil
	s.setup = nil
	s.waiting = nil
	s.held = nil
	s.phase = hfp.CallSetupNone
	ups := s.syncLocked()
	s.mu.Unlock()
	s.flush(ups)
	s.logger.Info("对端已挂断")
	return nil
}

// SetSignal 调整信号强度指示
func (s *Simulator) SetSignal(v int) error {
	if !hfp.IndicatorSignal.InRange(v) {
		return fmt.Errorf("callsim: signal %d out of range", v)
	}
	s.mu.Lock()
	s.signal = v
	ups := s.syncLocked()
	s.mu.Unlock()
	s.flush(ups)
	return nil
}

// SetBattery 调整电量指示
func (s *Simulator) SetBattery(v int) error {
	if !hfp.IndicatorBattChg.InRange(v) {
		return fmt.Errorf("callsim: battery %d out of range", v)
	}
	s.mu.Lock()
	s.battery = v
	ups := s.syncLocked()
	s.mu.Unlock()
	s.flush(ups)
	return nil
}

// SetService 调整网络注册指示
func (s *Simulator) SetService(on bool) {
	s.mu.Lock()
	s.service = on
	ups := s.syncLocked()
	s.mu.Unlock()
	s.flush(ups)
}

// SetRoam 调整漫游指示
func (s *Simulator) SetRoam(on bool) {
	s.mu.Lock()
	s.roam = on
	ups := s.syncLocked()
	s.mu.Unlock()
	s.flush(ups)
}

// SetOperator 更新运营商名称并通知引擎
func (s *Simulator) SetOperator(name string) {
	s.mu.Lock()
	s.operator = name
	s.mu.Unlock()
	s.flush([]*telephony.AgUpdate{{
		Type:     telephony.UpdateNetworkOperator,
		Operator: &telephony.OperatorPayload{Name: name},
	}})
}

// SetInbandRing 切换带内铃音
func (s *Simulator) SetInbandRing(on bool) {
	s.flush([]*telephony.AgUpdate{{
		Type:       telephony.UpdateInbandRing,
		InbandRing: &telephony.InbandRingPayload{Enabled: on},
	}})
}

// SetSpeakerGain 推送扬声器音量
func (s *Simulator) SetSpeakerGain(level int) error {
	if level < hfp.GainMin || level > hfp.GainMax {
		return fmt.Errorf("callsim: gain %d out of range", level)
	}
	s.flush([]*telephony.AgUpdate{{
		Type: telephony.UpdateSpeakerGain,
		Gain: &telephony.GainPayload{Level: level},
	}})
	return nil
}

// SetMicrophoneGain 推送麦克风音量
func (s *Simulator) SetMicrophoneGain(level int) error {
	if level < hfp.GainMin || level > hfp.GainMax {
		return fmt.Errorf("callsim: gain %d out of range", level)
	}
	s.flush([]*telephony.AgUpdate{{
		Type: telephony.UpdateMicrophoneGain,
		Gain: &telephony.GainPayload{Level: level},
	}})
	return nil
}

// StartCodecNegotiation 触发编解码协商；codec 为 CodecNone 时由引擎挑选
func (s *Simulator) StartCodecNegotiation(codec hfp.CodecID) {
	s.flush([]*telephony.AgUpdate{{
		Type:  telephony.UpdateStartCodecNegotiation,
		Codec: &telephony.CodecPayload{Codec: codec},
	}})
}

// SetMemory 写入记忆拨号槽位
func (s *Simulator) SetMemory(slot int, number string) error {
	if slot <= 0 {
		return fmt.Errorf("callsim: bad memory slot %d", slot)
	}
	s.mu.Lock()
	if number == "" {
		delete(s.memory, slot)
	} else {
		s.memory[slot] = number
	}
	s.mu.Unlock()
	return nil
}

// State 话机状态快照（运维 API 读取用）
type State struct {
	Service    bool   `json:"service"`
	Signal     int    `json:"signal"`
	Battery    int    `json:"battery"`
	Roam       bool   `json:"roam"`
	Operator   string `json:"operator"`
	Active     *call  `json:"active,omitempty"`
	Held       *call  `json:"held,omitempty"`
	Waiting    *call  `json:"waiting,omitempty"`
	Setup      *call  `json:"setup,omitempty"`
	SetupPhase int    `json:"setup_phase"`
	LastDialed string `json:"last_dialed,omitempty"`
	LastDtmf   string `json:"last_dtmf,omitempty"`
}

// Snapshot 返回话机状态快照
func (s *Simulator) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Service:    s.service,
		Signal:     s.signal,
		Battery:    s.battery,
		Roam:       s.roam,
		Operator:   s.operator,
		Active:     s.active,
		Held:       s.held,
		Waiting:    s.waiting,
		Setup:      s.setup,
		SetupPhase: s.phase,
		LastDialed: s.lastDialed,
	}
	if s.lastDtmf != 0 {
		st.LastDtmf = string(s.lastDtmf)
	}
	return st
}

// ---- 内部 ----

// values 按当前话机状态推导七项指示器取值（需持锁）
func (s *Simulator) values() map[hfp.Indicator]int {
	callsetup := hfp.CallSetupNone
	if s.setup != nil {
		callsetup = s.phase
	} else if s.waiting != nil {
		callsetup = hfp.CallSetupIncoming
	}
	callheld := hfp.CallHeldNone
	if s.held != nil {
		if s.active != nil {
			callheld = hfp.CallHeldActiveAndHeld
		} else {
			callheld = hfp.CallHeldOnly
		}
	}
	return map[hfp.Indicator]int{
		hfp.IndicatorService:   b2i(s.service),
		hfp.IndicatorCall:      b2i(s.active != nil),
		hfp.IndicatorCallSetup: callsetup,
		hfp.IndicatorCallHeld:  callheld,
		hfp.IndicatorSignal:    s.signal,
		hfp.IndicatorRoam:      b2i(s.roam),
		hfp.IndicatorBattChg:   s.battery,
	}
}

// syncLocked 与上次广播比对，返回需要下发的指示器更新（需持锁）
func (s *Simulator) syncLocked() []*telephony.AgUpdate {
	vals := s.values()
	var ups []*telephony.AgUpdate
	for _, ind := range indicatorOrder {
		v := vals[ind]
		if s.prev[ind] != v {
			s.prev[ind] = v
			ups = append(ups, telephony.NewIndicatorUpdate(ind, v))
		}
	}
	return ups
}

// flush 把更新交给引擎广播。必须在不持锁时调用：引擎的处理循环会
// 反过来调用 HandleCallAction。
func (s *Simulator) flush(ups []*telephony.AgUpdate) {
	if len(ups) == 0 {
		return
	}
	s.mu.Lock()
	sink := s.sink
	s.mu.Unlock()
	if sink == nil {
		return
	}
	for _, up := range ups {
		if err := sink.BroadcastUpdate(context.Background(), up); err != nil {
			s.logger.Debug("更新广播失败",
				zap.String("type", string(up.Type)), zap.Error(err))
		}
	}
}

// ringLoop 周期性下发振铃，场景代次变化或来电结束即退出
func (s *Simulator) ringLoop(number string, seq uint64) {
	interval := s.cfg.RingInterval
	if interval <= 0 {
		interval = defaultRingInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		s.mu.Lock()
		alive := s.seq == seq && s.setup != nil && s.phase == hfp.CallSetupIncoming
		s.mu.Unlock()
		if !alive {
			return
		}
		s.flush([]*telephony.AgUpdate{telephony.NewRingUpdate(number)})
		<-t.C
	}
}

// scheduleAlerting 拨号后延迟推进到对端振铃（需持锁调用）
func (s *Simulator) scheduleAlerting(seq uint64) {
	delay := s.cfg.ConnectDelay
	if delay <= 0 {
		delay = defaultConnectDelay
	}
	time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.seq != seq || s.setup == nil || s.phase != hfp.CallSetupDialing {
			s.mu.Unlock()
			return
		}
		s.phase = hfp.CallSetupAlerting
		ups := s.syncLocked()
		s.mu.Unlock()
		s.flush(ups)
	})
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
