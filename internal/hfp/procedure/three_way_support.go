package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// ThreeWaySupport SLC 建立后的 AT+CHLD=? 能力再查询。
// 握手期的首次查询由初始化过程承担，这里服务部分 HF 的重复探询。
type ThreeWaySupport struct {
	responded bool
}

func newThreeWaySupport() *ThreeWaySupport { return &ThreeWaySupport{} }

func (p *ThreeWaySupport) Marker() Marker { return MarkerThreeWaySupport }

func (p *ThreeWaySupport) Terminated() bool { return p.responded }

func (p *ThreeWaySupport) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	if p.responded {
		return FailHF(cmd)
	}
	if !cmd.Is(at.NameCHLD, at.KindTest) {
		return FailHF(cmd)
	}
	if !st.AgFeatures.Has(hfp.AgFeatureThreeWayCalling) ||
		!st.HfFeatures.Has(hfp.HfFeatureThreeWayCalling) {
		return FailHFCode(cmd, at.CmeOperationNotSupported)
	}
	ecc := st.AgFeatures.Has(hfp.AgFeatureEnhancedCallControl) &&
		st.HfFeatures.Has(hfp.HfFeatureEnhancedCallControl)
	p.responded = true
	return Send(at.Response(hfp.HoldOpsLine(ecc)), at.Ok())
}

func (p *ThreeWaySupport) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	return FailAG(up)
}
