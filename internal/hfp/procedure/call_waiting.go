package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// CallWaitingNotifications 呼叫等待通知（HFP v1.8 §4.21）。
// HF 路径：AT+CCWA=<0|1> 开关；AG 路径：通知开启时推送 +CCWA。
// 一次实例只承载一次交换。
type CallWaitingNotifications struct {
	done bool
}

func newCallWaitingNotifications() *CallWaitingNotifications { return &CallWaitingNotifications{} }

func (p *CallWaitingNotifications) Marker() Marker { return MarkerCallWaitingNotifications }

func (p *CallWaitingNotifications) Terminated() bool { return p.done }

func (p *CallWaitingNotifications) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	if p.done {
		return FailHF(cmd)
	}
	if !cmd.Is(at.NameCCWA, at.KindSet) {
		return FailHF(cmd)
	}
	if !st.AgFeatures.Has(hfp.AgFeatureThreeWayCalling) {
		return FailHFCode(cmd, at.CmeOperationNotSupported)
	}
	v, err := cmd.IntArg(0)
	if err != nil || (v != 0 && v != 1) {
		return FailHF(cmd)
	}
	st.CallWaitingNotifications = v == 1
	p.done = true
	return Send(at.Ok())
}

func (p *CallWaitingNotifications) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	if p.done || up.Type != telephony.UpdateCallWaiting || up.CallWaiting == nil {
		return FailAG(up)
	}
	// 通知未开启时推送不合法，呼叫服务应先确认开关
	if !st.CallWaitingNotifications {
		return FailAG(up)
	}
	p.done = true
	num := up.CallWaiting.Number
	return Send(at.Infof("+CCWA: \"%s\",%d", num, telephony.TypeOfNumber(num)))
}
