package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// HangUp AT+CHUP 挂断（HFP v1.8 §4.14/§4.15）。
// 可结束活动呼叫、拒接来电或放弃呼出建立；无呼叫可挂时不合法。
type HangUp struct {
	done bool
}

func newHangUp() *HangUp { return &HangUp{} }

func (p *HangUp) Marker() Marker { return MarkerHangUp }

func (p *HangUp) Terminated() bool { return p.done }

func (p *HangUp) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	if p.done {
		return FailHF(cmd)
	}
	if !cmd.Is(at.NameCHUP, at.KindExec) {
		return FailHF(cmd)
	}
	if st.Indicators.Call == 0 && st.Indicators.CallSetup == hfp.CallSetupNone {
		return FailHFCode(cmd, at.CmeOperationNotAllowed)
	}
	p.done = true
	return SendAction(&telephony.CallAction{Type: telephony.ActionHangUp}, at.Ok())
}

func (p *HangUp) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	return FailAG(up)
}
