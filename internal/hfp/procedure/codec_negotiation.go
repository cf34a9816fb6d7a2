package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// codecNegState 协商阶段
type codecNegState int

const (
	negIdle         codecNegState = iota // 等待 AG 侧发起
	negAwaitConfirm                      // +BCS 已发出，等待 AT+BCS= 确认
	negDone
)

// CodecNegotiation 编解码协商（HFP v1.8 §4.11.3）。
// AG 发起 +BCS:<id>，HF 以 AT+BCS=<同一 id> 确认后选定；
// 等待期间 HF 送来 AT+BAC= 表示可用列表已变化，本轮协商作废（OK 终止，
// 不选定任何编解码，由 AG 层决定是否重新发起）；确认 id 不符则为时序
// 错误，过程停在等待状态，后续正确的确认仍可成功。
type CodecNegotiation struct {
	state    codecNegState
	proposed hfp.CodecID
}

func newCodecNegotiation() *CodecNegotiation { return &CodecNegotiation{state: negIdle} }

func (p *CodecNegotiation) Marker() Marker { return MarkerCodecNegotiation }

func (p *CodecNegotiation) Terminated() bool { return p.state == negDone }

func (p *CodecNegotiation) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	if p.state != negIdle || up.Type != telephony.UpdateStartCodecNegotiation {
		return FailAG(up)
	}
	if !st.AgFeatures.Has(hfp.AgFeatureCodecNegotiation) ||
		!st.HfFeatures.Has(hfp.HfFeatureCodecNegotiation) {
		return FailAG(up)
	}
	codec := hfp.CodecNone
	if up.Codec != nil {
		codec = up.Codec.Codec
	}
	if codec == hfp.CodecNone {
		codec = hfp.SelectCodec(st.AgCodecs, st.Codec.Supported)
	} else if !hfp.ContainsCodec(st.AgCodecs, codec) ||
		!hfp.ContainsCodec(st.Codec.Supported, codec) {
		return FailAG(up)
	}
	if codec == hfp.CodecNone {
		return FailAG(up)
	}
	p.proposed = codec
	p.state = negAwaitConfirm
	st.Codec.Proposed = codec
	return Send(at.Infof("+BCS: %d", uint8(codec)))
}

func (p *CodecNegotiation) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	if p.state != negAwaitConfirm {
		return FailHF(cmd)
	}
	switch {
	case cmd.Is(at.NameBCS, at.KindSet):
		id, err := cmd.IntArg(0)
		if err != nil || hfp.CodecID(id) != p.proposed {
			return FailHF(cmd)
		}
		st.Codec.Selected = p.proposed
		st.Codec.Proposed = hfp.CodecNone
		p.state = negDone
		return Send(at.Ok())
	case cmd.Is(at.NameBAC, at.KindSet):
		// 可用列表变化，本轮作废
		ids, err := parseCodecArgs(cmd)
		if err != nil {
			return FailHF(cmd)
		}
		st.Codec.Supported = ids
		st.Codec.Proposed = hfp.CodecNone
		if st.Codec.Selected != hfp.CodecNone && !hfp.ContainsCodec(ids, st.Codec.Selected) {
			st.Codec.Selected = hfp.CodecNone
		}
		p.state = negDone
		return Send(at.Ok())
	default:
		return FailHF(cmd)
	}
}
