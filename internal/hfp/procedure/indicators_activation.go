package procedure

import (
	"strconv"

	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// IndicatorsActivation AT+BIA 指示器上报开关（HFP v1.8 §4.35）。
// 参数按位置对应指示器，空位保持现状；call/callsetup/callheld 永不关闭。
type IndicatorsActivation struct {
	applied bool
}

func newIndicatorsActivation() *IndicatorsActivation { return &IndicatorsActivation{} }

func (p *IndicatorsActivation) Marker() Marker { return MarkerIndicatorsActivation }

func (p *IndicatorsActivation) Terminated() bool { return p.applied }

func (p *IndicatorsActivation) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	if p.applied {
		return FailHF(cmd)
	}
	if !cmd.Is(at.NameBIA, at.KindSet) {
		return FailHF(cmd)
	}
	if len(cmd.Args) > hfp.IndicatorCount {
		return FailHFCode(cmd, at.CmeInvalidIndex)
	}

	// 先整行校验，再一次性落入状态：错误路径不得改动任何取值
	type change struct {
		ind      hfp.Indicator
		disabled bool
	}
	var changes []change
	for i, arg := range cmd.Args {
		if arg == "" {
			continue
		}
		v, err := strconv.Atoi(arg)
		if err != nil || (v != 0 && v != 1) {
			return FailHF(cmd)
		}
		ind := hfp.Indicator(i + 1)
		if ind == hfp.IndicatorCall || ind == hfp.IndicatorCallSetup || ind == hfp.IndicatorCallHeld {
			continue
		}
		changes = append(changes, change{ind: ind, disabled: v == 0})
	}
	for _, c := range changes {
		if c.disabled {
			st.IndicatorsDisabled[c.ind] = true
		} else {
			delete(st.IndicatorsDisabled, c.ind)
		}
	}
	p.applied = true
	return Send(at.Ok())
}

func (p *IndicatorsActivation) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	return FailAG(up)
}
