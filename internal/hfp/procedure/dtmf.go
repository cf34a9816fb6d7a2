package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// Dtmf AT+VTS DTMF 码发送（HFP v1.8 §4.28）。
// 仅在有活动呼叫时合法，码字限 [0-9#*A-D]。
type Dtmf struct {
	done bool
}

func newDtmf() *Dtmf { return &Dtmf{} }

func (p *Dtmf) Marker() Marker { return MarkerDtmf }

func (p *Dtmf) Terminated() bool { return p.done }

func (p *Dtmf) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	if p.done {
		return FailHF(cmd)
	}
	if !cmd.Is(at.NameVTS, at.KindSet) {
		return FailHF(cmd)
	}
	code, ok := dtmfCode(cmd.Arg(0))
	if !ok {
		return FailHFCode(cmd, at.CmeInvalidCharacters)
	}
	if st.Indicators.Call != 1 {
		return FailHFCode(cmd, at.CmeOperationNotAllowed)
	}
	p.done = true
	action := &telephony.CallAction{Type: telephony.ActionTransmitDtmf, Dtmf: &telephony.DtmfPayload{Code: code}}
	return SendAction(action, at.Ok())
}

func (p *Dtmf) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	return FailAG(up)
}

func dtmfCode(s string) (byte, bool) {
	if len(s) != 1 {
		return 0, false
	}
	c := s[0]
	if (c >= '0' && c <= '9') || c == '#' || c == '*' || (c >= 'A' && c <= 'D') {
		return c, true
	}
	return 0, false
}
