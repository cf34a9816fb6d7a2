package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// Nrec AT+NREC 回声消除/降噪控制（HFP v1.8 §4.24）。
// 协议只定义关闭（AT+NREC=0），且要求 AG 具备 EC/NR 特性。
type Nrec struct {
	applied bool
}

func newNrec() *Nrec { return &Nrec{} }

func (p *Nrec) Marker() Marker { return MarkerNrec }

func (p *Nrec) Terminated() bool { return p.applied }

func (p *Nrec) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	if p.applied {
		return FailHF(cmd)
	}
	if !cmd.Is(at.NameNREC, at.KindSet) {
		return FailHF(cmd)
	}
	if !st.AgFeatures.Has(hfp.AgFeatureEcNr) {
		return FailHFCode(cmd, at.CmeOperationNotSupported)
	}
	v, err := cmd.IntArg(0)
	if err != nil || v != 0 {
		return FailHF(cmd)
	}
	st.NrecDisabled = true
	p.applied = true
	return Send(at.Ok())
}

func (p *Nrec) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	return FailAG(up)
}
