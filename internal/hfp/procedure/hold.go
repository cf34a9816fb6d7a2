package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// Hold AT+CHLD=<op> 三方通话保持操作（HFP v1.8 §4.22）。
// 要求双方具备三方通话特性，带索引操作额外要求增强呼叫控制；
// 呼叫状态层面的可行性由呼叫服务裁决（动作失败转否定应答）。
type Hold struct {
	done bool
}

func newHold() *Hold { return &Hold{} }

func (p *Hold) Marker() Marker { return MarkerHold }

func (p *Hold) Terminated() bool { return p.done }

func (p *Hold) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	if p.done {
		return FailHF(cmd)
	}
	if !cmd.Is(at.NameCHLD, at.KindSet) {
		return FailHF(cmd)
	}
	if !st.AgFeatures.Has(hfp.AgFeatureThreeWayCalling) ||
		!st.HfFeatures.Has(hfp.HfFeatureThreeWayCalling) {
		return FailHFCode(cmd, at.CmeOperationNotSupported)
	}
	op, err := hfp.ParseHoldOp(cmd.Arg(0))
	if err != nil {
		return FailHF(cmd)
	}
	if op.Enhanced() &&
		(!st.AgFeatures.Has(hfp.AgFeatureEnhancedCallControl) ||
			!st.HfFeatures.Has(hfp.HfFeatureEnhancedCallControl)) {
		return FailHFCode(cmd, at.CmeOperationNotSupported)
	}
	// 没有任何呼叫或呼叫建立时，保持操作无意义
	if st.Indicators.Call == 0 && st.Indicators.CallSetup == hfp.CallSetupNone &&
		st.Indicators.CallHeld == hfp.CallHeldNone {
		return FailHFCode(cmd, at.CmeOperationNotAllowed)
	}
	p.done = true
	action := &telephony.CallAction{Type: telephony.ActionHold, Hold: &telephony.HoldPayload{Op: op}}
	return SendAction(action, at.Ok())
}

func (p *Hold) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	return FailAG(up)
}
