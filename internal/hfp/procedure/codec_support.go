package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// CodecSupport SLC 建立后的 AT+BAC= 可用编解码更新（HFP v1.8 §4.11.2）。
// 选定编解码若从新列表中消失则作废，等待下一轮协商重新选择。
// 协商进行中的 AT+BAC 由 Dispatcher 交给协商过程处理。
type CodecSupport struct {
	done bool
}

func newCodecSupport() *CodecSupport { return &CodecSupport{} }

func (p *CodecSupport) Marker() Marker { return MarkerCodecSupport }

func (p *CodecSupport) Terminated() bool { return p.done }

func (p *CodecSupport) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	if p.done {
		return FailHF(cmd)
	}
	if !cmd.Is(at.NameBAC, at.KindSet) {
		return FailHF(cmd)
	}
	if !st.AgFeatures.Has(hfp.AgFeatureCodecNegotiation) ||
		!st.HfFeatures.Has(hfp.HfFeatureCodecNegotiation) {
		return FailHFCode(cmd, at.CmeOperationNotSupported)
	}
	ids, err := parseCodecArgs(cmd)
	if err != nil {
		return FailHF(cmd)
	}
	st.Codec.Supported = ids
	if st.Codec.Selected != hfp.CodecNone && !hfp.ContainsCodec(ids, st.Codec.Selected) {
		st.Codec.Selected = hfp.CodecNone
	}
	p.done = true
	return Send(at.Ok())
}

func (p *CodecSupport) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	return FailAG(up)
}

// parseCodecArgs 解析 AT+BAC=<id,...>；列表不得为空，ID 取值 1..255
func parseCodecArgs(cmd *at.Command) ([]hfp.CodecID, error) {
	if len(cmd.Args) == 0 || cmd.Args[0] == "" {
		return nil, errEmptyCodecList
	}
	ids := make([]hfp.CodecID, 0, len(cmd.Args))
	for i := range cmd.Args {
		n, err := cmd.IntArg(i)
		if err != nil || n <= 0 || n > 255 {
			return nil, errBadCodecID
		}
		ids = append(ids, hfp.CodecID(n))
	}
	return ids, nil
}
