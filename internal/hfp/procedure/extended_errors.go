package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// ExtendedErrors AT+CMEE 扩展错误码开关（HFP v1.8 §4.9）
type ExtendedErrors struct {
	applied bool
}

func newExtendedErrors() *ExtendedErrors { return &ExtendedErrors{} }

func (p *ExtendedErrors) Marker() Marker { return MarkerExtendedErrors }

func (p *ExtendedErrors) Terminated() bool { return p.applied }

func (p *ExtendedErrors) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	if p.applied {
		return FailHF(cmd)
	}
	if !cmd.Is(at.NameCMEE, at.KindSet) {
		return FailHF(cmd)
	}
	if !st.AgFeatures.Has(hfp.AgFeatureExtendedErrors) {
		return FailHFCode(cmd, at.CmeOperationNotSupported)
	}
	v, err := cmd.IntArg(0)
	if err != nil || (v != 0 && v != 1) {
		return FailHF(cmd)
	}
	st.ExtendedErrors = v == 1
	p.applied = true
	return Send(at.Ok())
}

func (p *ExtendedErrors) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	return FailAG(up)
}
