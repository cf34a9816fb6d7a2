package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// operatorNameMax +COPS 应答中名称的最大长度（TS 27.007 长名格式）
const operatorNameMax = 16

// QueryOperatorSelection 运营商查询（HFP v1.8 §4.8）。
// HF 路径：AT+COPS=3,0 设置名称格式、AT+COPS? 查询；
// AG 路径：运营商名称变化仅同步状态，不产生出站消息。
type QueryOperatorSelection struct {
	done bool
}

func newQueryOperatorSelection() *QueryOperatorSelection { return &QueryOperatorSelection{} }

func (p *QueryOperatorSelection) Marker() Marker { return MarkerQueryOperatorSelection }

func (p *QueryOperatorSelection) Terminated() bool { return p.done }

func (p *QueryOperatorSelection) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	if p.done {
		return FailHF(cmd)
	}
	switch {
	case cmd.Is(at.NameCOPS, at.KindSet):
		// 协议固定为 AT+COPS=3,0（长名字母格式）
		mode, err1 := cmd.IntArg(0)
		format, err2 := cmd.IntArg(1)
		if err1 != nil || err2 != nil || mode != 3 || format != 0 {
			return FailHF(cmd)
		}
		st.OperatorFormat = true
		p.done = true
		return Send(at.Ok())
	case cmd.Is(at.NameCOPS, at.KindRead):
		p.done = true
		name := st.OperatorName
		if len(name) > operatorNameMax {
			name = name[:operatorNameMax]
		}
		if !st.OperatorFormat || name == "" {
			return Send(at.Infof("+COPS: 0"), at.Ok())
		}
		return Send(at.Infof("+COPS: 0,0,\"%s\"", name), at.Ok())
	default:
		return FailHF(cmd)
	}
}

func (p *QueryOperatorSelection) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	if p.done || up.Type != telephony.UpdateNetworkOperator || up.Operator == nil {
		return FailAG(up)
	}
	st.OperatorName = up.Operator.Name
	p.done = true
	return Send()
}
