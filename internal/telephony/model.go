// Package telephony 定义 SLC 引擎与呼叫控制服务之间的边界：
// 引擎转发 HF 触发的呼叫动作（CallAction），呼叫服务推送 AG 侧更新（AgUpdate）。
package telephony

import (
	"strings"

	"github.com/lanwave/hfp-ag/internal/hfp"
)

// PeerID SLC 连接标识
type PeerID string

// 号码类型（TS 27.007 <type>）
const (
	NumberTypeNational      = 129
	NumberTypeInternational = 145
)

// TypeOfNumber 依据号码前缀推断 <type> 字段取值
func TypeOfNumber(number string) int {
	if strings.HasPrefix(number, "+") {
		return NumberTypeInternational
	}
	return NumberTypeNational
}

// UpdateType AG 侧推送给引擎的更新类型
type UpdateType string

const (
	UpdateIndicator             UpdateType = "Indicator"
	UpdateRing                  UpdateType = "Ring"
	UpdateCallWaiting           UpdateType = "CallWaiting"
	UpdateSpeakerGain           UpdateType = "SpeakerGain"
	UpdateMicrophoneGain        UpdateType = "MicrophoneGain"
	UpdateInbandRing            UpdateType = "InbandRing"
	UpdateNetworkOperator       UpdateType = "NetworkOperator"
	UpdateStartCodecNegotiation UpdateType = "StartCodecNegotiation"
)

// IndicatorPayload 指示器取值变化
type IndicatorPayload struct {
	Indicator hfp.Indicator
	Value     int
}

// RingPayload 一次振铃周期；Number 为空表示号码不可用
type RingPayload struct {
	Number string
}

// CallWaitingPayload 呼叫等待通知
type CallWaitingPayload struct {
	Number string
}

// GainPayload 音量同步
type GainPayload struct {
	Level int // 0..15
}

// InbandRingPayload 带内铃音开关
type InbandRingPayload struct {
	Enabled bool
}

// OperatorPayload 运营商名称变化
type OperatorPayload struct {
	Name string
}

// CodecPayload 编解码协商请求；Codec 为 CodecNone 时由引擎按优先级挑选
type CodecPayload struct {
	Codec hfp.CodecID
}

// AgUpdate 呼叫服务 -> 引擎 的一条更新（按 Type 取对应载荷指针）
type AgUpdate struct {
	Type        UpdateType
	Indicator   *IndicatorPayload
	Ring        *RingPayload
	CallWaiting *CallWaitingPayload
	Gain        *GainPayload
	InbandRing  *InbandRingPayload
	Operator    *OperatorPayload
	Codec       *CodecPayload
}

func (u *AgUpdate) String() string { return string(u.Type) }

// NewIndicatorUpdate 构造指示器更新
func NewIndicatorUpdate(ind hfp.Indicator, value int) *AgUpdate {
	return &AgUpdate{Type: UpdateIndicator, Indicator: &IndicatorPayload{Indicator: ind, Value: value}}
}

// NewRingUpdate 构造振铃更新
func NewRingUpdate(number string) *AgUpdate {
	return &AgUpdate{Type: UpdateRing, Ring: &RingPayload{Number: number}}
}

// CallActionType 引擎转发给呼叫服务的动作类型
type CallActionType string

const (
	ActionAnswer       CallActionType = "Answer"
	ActionHangUp       CallActionType = "HangUp"
	ActionInitiateCall CallActionType = "InitiateCall"
	ActionTransmitDtmf CallActionType = "TransmitDtmf"
	ActionHold         CallActionType = "Hold"
)

// DialPayload 发起呼叫；Memory 为 true 时 Target 为记忆位索引，
// Redial 为 true 时重拨最后号码（Target 为空）
type DialPayload struct {
	Target string
	Memory bool
	Redial bool
}

// DtmfPayload DTMF 码发送
type DtmfPayload struct {
	Code byte // [0-9#*A-D]
}

// HoldPayload 三方通话保持操作
type HoldPayload struct {
	Op hfp.HoldOp
}

// CallAction 引擎 -> 呼叫服务 的标准动作
type CallAction struct {
	Type CallActionType
	Peer PeerID
	Dial *DialPayload
	Dtmf *DtmfPayload
	Hold *HoldPayload
}

func (a *CallAction) String() string { return string(a.Type) }
