package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// Ring 来电振铃周期（HFP v1.8 §4.13）。
// 每条更新发出一次 RING（CLIP 开启且号码可用时附带 +CLIP），
// 仅在 callsetup 处于来电建立时合法。节奏由呼叫服务掌握。
type Ring struct {
	rung bool
}

func newRing() *Ring { return &Ring{} }

func (p *Ring) Marker() Marker { return MarkerRing }

func (p *Ring) Terminated() bool { return p.rung }

func (p *Ring) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	return FailHF(cmd)
}

func (p *Ring) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	if p.rung || up.Type != telephony.UpdateRing || up.Ring == nil {
		return FailAG(up)
	}
	if st.Indicators.CallSetup != hfp.CallSetupIncoming {
		return FailAG(up)
	}
	p.rung = true
	msgs := []at.Response{at.Ring()}
	if st.CallLineIdent && up.Ring.Number != "" {
		num := up.Ring.Number
		msgs = append(msgs, at.Infof("+CLIP: \"%s\",%d", num, telephony.TypeOfNumber(num)))
	}
	return Send(msgs...)
}
