package procedure

import (
	"strconv"
	"strings"

	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// slcInitStage SLC 初始化的阶段（HFP v1.8 §4.2.1 规定的命令顺序）
type slcInitStage int

const (
	stageFeatures         slcInitStage = iota // 等待 AT+BRSF=
	stageCodecs                               // 等待 AT+BAC=（双方都支持编解码协商时）
	stageIndicatorsTest                       // 等待 AT+CIND=?
	stageIndicatorsRead                       // 等待 AT+CIND?
	stageEventReporting                       // 等待 AT+CMER=
	stageCallHold                             // 等待 AT+CHLD=?（双方都支持三方通话时）
	stageHfIndicators                         // 等待 AT+BIND=
	stageHfIndicatorsTest                     // 等待 AT+BIND=?
	stageHfIndicatorsRead                     // 等待 AT+BIND?
	stageInitDone
)

// SlcInitialization 初始化伞形过程：按阶段逐一校验 HF 的握手命令，
// 任何乱序命令都是握手失败（Dispatcher 对 gating 错误执行连接拆除）。
type SlcInitialization struct {
	stage slcInitStage
}

func newSlcInitialization() *SlcInitialization { return &SlcInitialization{stage: stageFeatures} }

func (p *SlcInitialization) Marker() Marker { return MarkerSlcInitialization }

func (p *SlcInitialization) Terminated() bool { return p.stage == stageInitDone }

func (p *SlcInitialization) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	return FailAG(up)
}

func (p *SlcInitialization) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	switch p.stage {
	case stageFeatures:
		return p.onFeatures(cmd, st)
	case stageCodecs:
		return p.onCodecs(cmd, st)
	case stageIndicatorsTest:
		if !cmd.Is(at.NameCIND, at.KindTest) {
			return FailHF(cmd)
		}
		p.stage = stageIndicatorsRead
		return Send(at.Response(hfp.IndicatorDescriptors), at.Ok())
	case stageIndicatorsRead:
		if !cmd.Is(at.NameCIND, at.KindRead) {
			return FailHF(cmd)
		}
		p.stage = stageEventReporting
		return Send(at.Infof("+CIND: %s", st.Indicators.String()), at.Ok())
	case stageEventReporting:
		return p.onEventReporting(cmd, st)
	case stageCallHold:
		if !cmd.Is(at.NameCHLD, at.KindTest) {
			return FailHF(cmd)
		}
		p.advance(bindStageOrDone(st), st)
		ecc := st.AgFeatures.Has(hfp.AgFeatureEnhancedCallControl) &&
			st.HfFeatures.Has(hfp.HfFeatureEnhancedCallControl)
		return Send(at.Response(hfp.HoldOpsLine(ecc)), at.Ok())
	case stageHfIndicators:
		return p.onHfIndicators(cmd, st)
	case stageHfIndicatorsTest:
		if !cmd.Is(at.NameBIND, at.KindTest) {
			return FailHF(cmd)
		}
		p.stage = stageHfIndicatorsRead
		return Send(at.Infof("+BIND: (%s)", joinInts(st.Registry.IDs())), at.Ok())
	case stageHfIndicatorsRead:
		return p.onHfIndicatorsRead(cmd, st)
	default:
		return FailHF(cmd)
	}
}

// onFeatures AT+BRSF=<hf features> -> +BRSF:<ag features> + OK
func (p *SlcInitialization) onFeatures(cmd *at.Command, st *hfp.SlcState) Request {
	if !cmd.Is(at.NameBRSF, at.KindSet) {
		return FailHF(cmd)
	}
	feat, err := cmd.IntArg(0)
	if err != nil || feat < 0 {
		return FailHF(cmd)
	}
	st.HfFeatures = hfp.HfFeatures(feat)
	if bothSupportCodecs(st) {
		p.stage = stageCodecs
	} else {
		p.stage = stageIndicatorsTest
	}
	return Send(at.Infof("+BRSF: %d", uint32(st.AgFeatures)), at.Ok())
}

// onCodecs AT+BAC=<id,...> -> OK
func (p *SlcInitialization) onCodecs(cmd *at.Command, st *hfp.SlcState) Request {
	if !cmd.Is(at.NameBAC, at.KindSet) {
		return FailHF(cmd)
	}
	ids, err := parseCodecArgs(cmd)
	if err != nil {
		return FailHF(cmd)
	}
	st.Codec.Supported = ids
	p.stage = stageIndicatorsTest
	return Send(at.Ok())
}

// onEventReporting AT+CMER=<mode>,<keyp>,<disp>,<ind> -> OK。
// 本阶段完成后，若无三方通话与 HF 指示器阶段，SLC 即告建立。
func (p *SlcInitialization) onEventReporting(cmd *at.Command, st *hfp.SlcState) Request {
	if !cmd.Is(at.NameCMER, at.KindSet) || len(cmd.Args) < 4 {
		return FailHF(cmd)
	}
	mode, err := cmd.IntArg(0)
	if err != nil || mode != 3 {
		return FailHF(cmd)
	}
	ind, err := cmd.IntArg(3)
	if err != nil || (ind != 0 && ind != 1) {
		return FailHF(cmd)
	}
	st.IndicatorEvents = ind == 1
	next := stageCallHold
	if !bothSupportThreeWay(st) {
		next = bindStageOrDone(st)
	}
	p.advance(next, st)
	return Send(at.Ok())
}

// onHfIndicators AT+BIND=<id,...> -> OK，记录 HF 声明的指示器
func (p *SlcInitialization) onHfIndicators(cmd *at.Command, st *hfp.SlcState) Request {
	if !cmd.Is(at.NameBIND, at.KindSet) || len(cmd.Args) == 0 || cmd.Args[0] == "" {
		return FailHF(cmd)
	}
	ids := make([]int, 0, len(cmd.Args))
	for i := range cmd.Args {
		id, err := cmd.IntArg(i)
		if err != nil || id <= 0 {
			return FailHF(cmd)
		}
		ids = append(ids, id)
	}
	st.HfIndicators.Announced = ids
	p.stage = stageHfIndicatorsTest
	return Send(at.Ok())
}

// onHfIndicatorsRead AT+BIND? -> 每个双方支持的指示器一行 +BIND:<id>,1，
// 最后 OK；此阶段完成即 SLC 建立
func (p *SlcInitialization) onHfIndicatorsRead(cmd *at.Command, st *hfp.SlcState) Request {
	if !cmd.Is(at.NameBIND, at.KindRead) {
		return FailHF(cmd)
	}
	var msgs []at.Response
	for _, id := range st.NegotiatedHfIndicators() {
		st.HfIndicators.Enabled[id] = true
		msgs = append(msgs, at.Infof("+BIND: %d,1", id))
	}
	msgs = append(msgs, at.Ok())
	p.advance(stageInitDone, st)
	return Send(msgs...)
}

// advance 切换阶段；到达终点时标记 SLC 建立
func (p *SlcInitialization) advance(next slcInitStage, st *hfp.SlcState) {
	p.stage = next
	if next == stageInitDone {
		st.Initialized = true
	}
}

func bothSupportCodecs(st *hfp.SlcState) bool {
	return st.AgFeatures.Has(hfp.AgFeatureCodecNegotiation) &&
		st.HfFeatures.Has(hfp.HfFeatureCodecNegotiation)
}

func bothSupportThreeWay(st *hfp.SlcState) bool {
	return st.AgFeatures.Has(hfp.AgFeatureThreeWayCalling) &&
		st.HfFeatures.Has(hfp.HfFeatureThreeWayCalling)
}

func bothSupportHfIndicators(st *hfp.SlcState) bool {
	return st.AgFeatures.Has(hfp.AgFeatureHfIndicators) &&
		st.HfFeatures.Has(hfp.HfFeatureHfIndicators)
}

func bindStageOrDone(st *hfp.SlcState) slcInitStage {
	if bothSupportHfIndicators(st) {
		return stageHfIndicators
	}
	return stageInitDone
}

func joinInts(ids []int) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}
