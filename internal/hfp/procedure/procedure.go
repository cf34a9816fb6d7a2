// Package procedure 实现 HFP v1.8 §4 各过程的状态机。
// 每个过程是一台小状态机：HFUpdate/AGUpdate 是同步状态迁移，产生 Request
// 效果；过程自身从不阻塞、从不直接写字节流、错误路径上从不改动连接状态。
package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// Procedure 过程契约。四个操作对所有过程一致，Dispatcher 以多态方式驱动：
// 当前状态下不合法的命令/更新必须返回 Unexpected 错误且不得改动 st；
// Terminated 为真后任何再调用同样只返回错误，从不恐慌。
type Procedure interface {
	// Marker 静态身份，与实例状态无关
	Marker() Marker
	// HFUpdate 响应 HF 侧命令，推进状态机
	HFUpdate(cmd *at.Command, st *hfp.SlcState) Request
	// AGUpdate 响应 AG 侧更新意图
	AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request
	// Terminated 过程已产生最终效果，应从活跃集移除
	Terminated() bool
}

// constructors 构造表：按 Marker 序数索引，保证每个标识都有对应实现
var constructors = [markerCount]func() Procedure{
	MarkerSlcInitialization:           func() Procedure { return newSlcInitialization() },
	MarkerIndicatorStatus:             func() Procedure { return newIndicatorStatus() },
	MarkerIndicatorsActivation:        func() Procedure { return newIndicatorsActivation() },
	MarkerExtendedErrors:              func() Procedure { return newExtendedErrors() },
	MarkerCallWaitingNotifications:    func() Procedure { return newCallWaitingNotifications() },
	MarkerCallLineIdentNotifications:  func() Procedure { return newCallLineIdentNotifications() },
	MarkerThreeWaySupport:             func() Procedure { return newThreeWaySupport() },
	MarkerNrec:                        func() Procedure { return newNrec() },
	MarkerQueryOperatorSelection:      func() Procedure { return newQueryOperatorSelection() },
	MarkerSubscriberNumberInformation: func() Procedure { return newSubscriberNumberInformation() },
	MarkerVolumeSync:                  func() Procedure { return newVolumeSync() },
	MarkerPhoneStatus:                 func() Procedure { return newPhoneStatus() },
	MarkerRing:                        func() Procedure { return newRing() },
	MarkerInbandRing:                  func() Procedure { return newInbandRing() },
	MarkerAnswer:                      func() Procedure { return newAnswer() },
	MarkerHangUp:                      func() Procedure { return newHangUp() },
	MarkerInitiateCall:                func() Procedure { return newInitiateCall() },
	MarkerDtmf:                        func() Procedure { return newDtmf() },
	MarkerHold:                        func() Procedure { return newHold() },
	MarkerTransferHfIndicator:         func() Procedure { return newTransferHfIndicator() },
	MarkerCodecSupport:                func() Procedure { return newCodecSupport() },
	MarkerCodecNegotiation:            func() Procedure { return newCodecNegotiation() },
}

// New 按标识构造新过程实例；未知标识返回 nil
func New(m Marker) Procedure {
	if m < 0 || m >= markerCount {
		return nil
	}
	return constructors[m]()
}
