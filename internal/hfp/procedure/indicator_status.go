package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// IndicatorStatus 指示器取值查询（HFP v1.8 §4.2.1.3，SLC 建立后的 AT+CIND?）。
// 仅 HF 发起：唯一合法迁移是查询 -> 快照应答 -> 终止。
type IndicatorStatus struct {
	responded bool
}

func newIndicatorStatus() *IndicatorStatus { return &IndicatorStatus{} }

func (p *IndicatorStatus) Marker() Marker { return MarkerIndicatorStatus }

func (p *IndicatorStatus) Terminated() bool { return p.responded }

func (p *IndicatorStatus) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	if p.responded {
		return FailHF(cmd)
	}
	if !cmd.Is(at.NameCIND, at.KindRead) {
		return FailHF(cmd)
	}
	p.responded = true
	return Send(at.Infof("+CIND: %s", st.Indicators.String()), at.Ok())
}

// AGUpdate 指示器查询没有 AG 发起路径
func (p *IndicatorStatus) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	return FailAG(up)
}
