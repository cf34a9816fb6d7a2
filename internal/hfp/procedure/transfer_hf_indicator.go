package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// TransferHfIndicator AT+BIEV HF 指示器值上报（HFP v1.8 §4.36）。
// 指示器必须已在握手中协商、当前启用且取值在登记表区间内。
type TransferHfIndicator struct {
	done bool
}

func newTransferHfIndicator() *TransferHfIndicator { return &TransferHfIndicator{} }

func (p *TransferHfIndicator) Marker() Marker { return MarkerTransferHfIndicator }

func (p *TransferHfIndicator) Terminated() bool { return p.done }

func (p *TransferHfIndicator) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	if p.done {
		return FailHF(cmd)
	}
	if !cmd.Is(at.NameBIEV, at.KindSet) || len(cmd.Args) != 2 {
		return FailHF(cmd)
	}
	id, err1 := cmd.IntArg(0)
	val, err2 := cmd.IntArg(1)
	if err1 != nil || err2 != nil {
		return FailHF(cmd)
	}
	def, known := st.Registry.Lookup(id)
	if !known || !announced(st, id) {
		return FailHFCode(cmd, at.CmeOperationNotSupported)
	}
	if !st.HfIndicators.Enabled[id] {
		return FailHFCode(cmd, at.CmeOperationNotAllowed)
	}
	if val < def.Min || val > def.Max {
		return FailHFCode(cmd, at.CmeOperationNotAllowed)
	}
	st.HfIndicators.Values[id] = val
	p.done = true
	return Send(at.Ok())
}

func (p *TransferHfIndicator) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	return FailAG(up)
}

func announced(st *hfp.SlcState, id int) bool {
	for _, a := range st.HfIndicators.Announced {
		if a == id {
			return true
		}
	}
	return false
}
