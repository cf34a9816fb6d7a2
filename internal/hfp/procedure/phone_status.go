package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// PhoneStatus 指示器状态传递（HFP v1.8 §4.4/§4.5）。
// 呼叫服务推送一次取值变化：总开关与按位开关都允许时发出 +CIEV，
// 否则仅同步状态。取值越界视为非法更新，状态不动。
type PhoneStatus struct {
	done bool
}

func newPhoneStatus() *PhoneStatus { return &PhoneStatus{} }

func (p *PhoneStatus) Marker() Marker { return MarkerPhoneStatus }

func (p *PhoneStatus) Terminated() bool { return p.done }

func (p *PhoneStatus) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	return FailHF(cmd)
}

func (p *PhoneStatus) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	if p.done || up.Type != telephony.UpdateIndicator || up.Indicator == nil {
		return FailAG(up)
	}
	ind, val := up.Indicator.Indicator, up.Indicator.Value
	if err := st.Indicators.Set(ind, val); err != nil {
		return FailAG(up)
	}
	p.done = true
	if st.IndicatorReported(ind) {
		return Send(at.Infof("+CIEV: %d,%d", int(ind), val))
	}
	return Send()
}
