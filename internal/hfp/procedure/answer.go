package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// Answer ATA 接听（HFP v1.8 §4.13.2）。
// 仅在来电建立阶段合法；OK 连同接听动作交给 Dispatcher，动作失败时
// 由 Dispatcher 以否定结果码取代。
type Answer struct {
	done bool
}

func newAnswer() *Answer { return &Answer{} }

func (p *Answer) Marker() Marker { return MarkerAnswer }

func (p *Answer) Terminated() bool { return p.done }

func (p *Answer) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	if p.done {
		return FailHF(cmd)
	}
	if !cmd.Is(at.NameAnswer, at.KindExec) {
		return FailHF(cmd)
	}
	if st.Indicators.CallSetup != hfp.CallSetupIncoming {
		return FailHFCode(cmd, at.CmeOperationNotAllowed)
	}
	p.done = true
	return SendAction(&telephony.CallAction{Type: telephony.ActionAnswer}, at.Ok())
}

func (p *Answer) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	return FailAG(up)
}
