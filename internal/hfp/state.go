package hfp

// 增益取值区间与默认值（AT+VGS / AT+VGM）
const (
	GainMin     = 0
	GainMax     = 15
	DefaultGain = 7
)

// SubscriberNumber 本机号码（+CNUM 应答内容）
type SubscriberNumber struct {
	Number  string
	Service int // 4=语音 5=传真
}

// CodecState 编解码协商状态
type CodecState struct {
	Supported []CodecID // HF 经 AT+BAC 告知的可用列表
	Selected  CodecID   // 已协商选定；CodecNone 表示未选定
	Proposed  CodecID   // +BCS 已发出、等待 AT+BCS 确认的提议
}

// HfIndicatorState HF 指示器协商结果与最近值
type HfIndicatorState struct {
	Announced []int        // HF 经 AT+BIND= 上报的 ID，保持上报顺序
	Enabled   map[int]bool // AG 的启用状态（仅对双方都支持的 ID 有意义）
	Values    map[int]int  // 最近一次 AT+BIEV 上报值
}

// SlcState 单条 SLC 的共享连接状态。
// 由 Dispatcher 独占持有，每次只借给一个过程步骤读写（单写者资源，
// 不得外泄第二个引用）。指示器取值只经过程步骤改动；特性集在握手
// 定格后只读。
type SlcState struct {
	AgFeatures AgFeatures // 本端特性集，创建时定格
	HfFeatures HfFeatures // 对端特性集，AT+BRSF 交换时写入

	AgCodecs []CodecID            // 本端可用编解码（静态配置）
	Registry *HfIndicatorRegistry // 本端支持的 HF 指示器登记表

	Indicators         IndicatorValues    // 指示器当前取值
	IndicatorEvents    bool               // AT+CMER 事件上报总开关
	IndicatorsDisabled map[Indicator]bool // AT+BIA 关闭的指示器；call/callsetup/callheld 永不关闭

	Codec CodecState

	CallWaitingNotifications bool // AT+CCWA
	CallLineIdent            bool // AT+CLIP
	ExtendedErrors           bool // AT+CMEE
	NrecDisabled             bool // AT+NREC=0 已生效
	InbandRing               bool // 带内铃音当前开关
	SpeakerGain              int
	MicrophoneGain           int

	HfIndicators HfIndicatorState

	OperatorName      string
	OperatorFormat    bool // AT+COPS=3,0 已设置长名字母格式
	SubscriberNumbers []SubscriberNumber

	Initialized bool // 全部 gating 过程完成，SLC 可用于呼叫控制
}

// SlcParams 创建连接状态所需的 AG 侧静态信息
type SlcParams struct {
	AgFeatures        AgFeatures
	AgCodecs          []CodecID
	Registry          *HfIndicatorRegistry
	Indicators        IndicatorValues
	OperatorName      string
	SubscriberNumbers []SubscriberNumber
}

// NewSlcState 创建一条连接的初始状态
func NewSlcState(p SlcParams) *SlcState {
	registry := p.Registry
	if registry == nil {
		registry = DefaultHfIndicatorRegistry()
	}
	codecs := p.AgCodecs
	if len(codecs) == 0 {
		codecs = []CodecID{CodecCVSD}
	}
	return &SlcState{
		AgFeatures:         p.AgFeatures,
		AgCodecs:           codecs,
		Registry:           registry,
		Indicators:         p.Indicators,
		IndicatorsDisabled: make(map[Indicator]bool),
		InbandRing:         p.AgFeatures.Has(AgFeatureInbandRing),
		SpeakerGain:        DefaultGain,
		MicrophoneGain:     DefaultGain,
		HfIndicators: HfIndicatorState{
			Enabled: make(map[int]bool),
			Values:  make(map[int]int),
		},
		OperatorName:      p.OperatorName,
		SubscriberNumbers: p.SubscriberNumbers,
	}
}

// IndicatorReported 判断某指示器的 +CIEV 上报当前是否应发出
func (s *SlcState) IndicatorReported(i Indicator) bool {
	return s.IndicatorEvents && !s.IndicatorsDisabled[i]
}

// NegotiatedHfIndicators 返回双方都支持的 HF 指示器 ID（登记表顺序）
func (s *SlcState) NegotiatedHfIndicators() []int {
	var out []int
	for _, id := range s.Registry.IDs() {
		for _, a := range s.HfIndicators.Announced {
			if a == id {
				out = append(out, id)
				break
			}
		}
	}
	return out
}
