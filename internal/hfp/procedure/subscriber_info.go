package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// SubscriberNumberInformation AT+CNUM 本机号码查询（HFP v1.8 §4.31）。
// 每个号码一行 +CNUM，没有号码时直接 OK。
type SubscriberNumberInformation struct {
	responded bool
}

func newSubscriberNumberInformation() *SubscriberNumberInformation {
	return &SubscriberNumberInformation{}
}

func (p *SubscriberNumberInformation) Marker() Marker { return MarkerSubscriberNumberInformation }

func (p *SubscriberNumberInformation) Terminated() bool { return p.responded }

func (p *SubscriberNumberInformation) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	if p.responded {
		return FailHF(cmd)
	}
	if !cmd.Is(at.NameCNUM, at.KindExec) {
		return FailHF(cmd)
	}
	p.responded = true
	msgs := make([]at.Response, 0, len(st.SubscriberNumbers)+1)
	for _, n := range st.SubscriberNumbers {
		service := n.Service
		if service == 0 {
			service = 4 // 默认语音服务
		}
		msgs = append(msgs, at.Infof("+CNUM: ,\"%s\",%d,,%d",
			n.Number, telephony.TypeOfNumber(n.Number), service))
	}
	msgs = append(msgs, at.Ok())
	return Send(msgs...)
}

func (p *SubscriberNumberInformation) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	return FailAG(up)
}
