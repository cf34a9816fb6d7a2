package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// Marker 过程身份标识。每种过程一个常量，Dispatcher 以它为活跃集键，
// 并据此实施同类过程单实例规则。
type Marker int

const (
	MarkerSlcInitialization Marker = iota
	MarkerIndicatorStatus
	MarkerIndicatorsActivation
	MarkerExtendedErrors
	MarkerCallWaitingNotifications
	MarkerCallLineIdentNotifications
	MarkerThreeWaySupport
	MarkerNrec
	MarkerQueryOperatorSelection
	MarkerSubscriberNumberInformation
	MarkerVolumeSync
	MarkerPhoneStatus
	MarkerRing
	MarkerInbandRing
	MarkerAnswer
	MarkerHangUp
	MarkerInitiateCall
	MarkerDtmf
	MarkerHold
	MarkerTransferHfIndicator
	MarkerCodecSupport
	MarkerCodecNegotiation

	markerCount // 常量表长度哨兵，保持在末尾
)

var markerNames = [markerCount]string{
	MarkerSlcInitialization:           "SlcInitialization",
	MarkerIndicatorStatus:             "IndicatorStatus",
	MarkerIndicatorsActivation:        "IndicatorsActivation",
	MarkerExtendedErrors:              "ExtendedErrors",
	MarkerCallWaitingNotifications:    "CallWaitingNotifications",
	MarkerCallLineIdentNotifications:  "CallLineIdentNotifications",
	MarkerThreeWaySupport:             "ThreeWaySupport",
	MarkerNrec:                        "Nrec",
	MarkerQueryOperatorSelection:      "QueryOperatorSelection",
	MarkerSubscriberNumberInformation: "SubscriberNumberInformation",
	MarkerVolumeSync:                  "VolumeSync",
	MarkerPhoneStatus:                 "PhoneStatus",
	MarkerRing:                        "Ring",
	MarkerInbandRing:                  "InbandRing",
	MarkerAnswer:                      "Answer",
	MarkerHangUp:                      "HangUp",
	MarkerInitiateCall:                "InitiateCall",
	MarkerDtmf:                        "Dtmf",
	MarkerHold:                        "Hold",
	MarkerTransferHfIndicator:         "TransferHfIndicator",
	MarkerCodecSupport:                "CodecSupport",
	MarkerCodecNegotiation:            "CodecNegotiation",
}

func (m Marker) String() string {
	if m >= 0 && m < markerCount {
		return markerNames[m]
	}
	return "UnknownMarker"
}

// MarkerForCommand 按命令名文法归类。SLC 尚未建立时，所有可识别命令都
// 属于初始化过程；无法归类（含词法非法）返回 false，由 Dispatcher 直接
// 以否定结果码应答。
func MarkerForCommand(cmd *at.Command, initialized bool) (Marker, bool) {
	if cmd == nil || cmd.Kind == at.KindInvalid {
		return 0, false
	}
	if !initialized {
		return MarkerSlcInitialization, true
	}
	switch cmd.Name {
	case at.NameCIND:
		return MarkerIndicatorStatus, true
	case at.NameBIA:
		return MarkerIndicatorsActivation, true
	case at.NameCMEE:
		return MarkerExtendedErrors, true
	case at.NameCCWA:
		return MarkerCallWaitingNotifications, true
	case at.NameCLIP:
		return MarkerCallLineIdentNotifications, true
	case at.NameCHLD:
		// 测试形态是能力再查询，设置形态是保持操作
		if cmd.Kind == at.KindTest {
			return MarkerThreeWaySupport, true
		}
		return MarkerHold, true
	case at.NameNREC:
		return MarkerNrec, true
	case at.NameCOPS:
		return MarkerQueryOperatorSelection, true
	case at.NameCNUM:
		return MarkerSubscriberNumberInformation, true
	case at.NameVGS, at.NameVGM:
		return MarkerVolumeSync, true
	case at.NameAnswer:
		return MarkerAnswer, true
	case at.NameCHUP:
		return MarkerHangUp, true
	case at.NameDial, at.NameBLDN:
		return MarkerInitiateCall, true
	case at.NameVTS:
		return MarkerDtmf, true
	case at.NameBIEV:
		return MarkerTransferHfIndicator, true
	case at.NameBAC:
		return MarkerCodecSupport, true
	case at.NameBCS:
		return MarkerCodecNegotiation, true
	default:
		return 0, false
	}
}

// MarkerForUpdate 按更新类型归类 AG 侧更新
func MarkerForUpdate(up *telephony.AgUpdate) (Marker, bool) {
	if up == nil {
		return 0, false
	}
	switch up.Type {
	case telephony.UpdateIndicator:
		return MarkerPhoneStatus, true
	case telephony.UpdateRing:
		return MarkerRing, true
	case telephony.UpdateCallWaiting:
		return MarkerCallWaitingNotifications, true
	case telephony.UpdateSpeakerGain, telephony.UpdateMicrophoneGain:
		return MarkerVolumeSync, true
	case telephony.UpdateInbandRing:
		return MarkerInbandRing, true
	case telephony.UpdateNetworkOperator:
		return MarkerQueryOperatorSelection, true
	case telephony.UpdateStartCodecNegotiation:
		return MarkerCodecNegotiation, true
	default:
		return 0, false
	}
}
