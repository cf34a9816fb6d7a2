package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// CallLineIdentNotifications AT+CLIP 来电号码显示开关（HFP v1.8 §4.23）。
// 开启后 +CLIP 在振铃周期内随 RING 发出（见 Ring 过程）。
type CallLineIdentNotifications struct {
	applied bool
}

func newCallLineIdentNotifications() *CallLineIdentNotifications {
	return &CallLineIdentNotifications{}
}

func (p *CallLineIdentNotifications) Marker() Marker { return MarkerCallLineIdentNotifications }

func (p *CallLineIdentNotifications) Terminated() bool { return p.applied }

func (p *CallLineIdentNotifications) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	if p.applied {
		return FailHF(cmd)
	}
	if !cmd.Is(at.NameCLIP, at.KindSet) {
		return FailHF(cmd)
	}
	v, err := cmd.IntArg(0)
	if err != nil || (v != 0 && v != 1) {
		return FailHF(cmd)
	}
	st.CallLineIdent = v == 1
	p.applied = true
	return Send(at.Ok())
}

func (p *CallLineIdentNotifications) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	return FailAG(up)
}
