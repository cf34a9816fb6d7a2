package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// InbandRing 带内铃音开关推送（HFP v1.8 §4.13.4，+BSIR）。
// 开启要求 AG 具备带内铃音特性；关闭随时合法。
type InbandRing struct {
	done bool
}

func newInbandRing() *InbandRing { return &InbandRing{} }

func (p *InbandRing) Marker() Marker { return MarkerInbandRing }

func (p *InbandRing) Terminated() bool { return p.done }

func (p *InbandRing) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	return FailHF(cmd)
}

func (p *InbandRing) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	if p.done || up.Type != telephony.UpdateInbandRing || up.InbandRing == nil {
		return FailAG(up)
	}
	enabled := up.InbandRing.Enabled
	if enabled && !st.AgFeatures.Has(hfp.AgFeatureInbandRing) {
		return FailAG(up)
	}
	st.InbandRing = enabled
	p.done = true
	flag := 0
	if enabled {
		flag = 1
	}
	return Send(at.Infof("+BSIR: %d", flag))
}
