// Package hfp 定义 HFP v1.8 的协议词汇：特性位、指示器、编解码、
// 三方通话操作、HF 指示器登记表，以及单条 SLC 的共享连接状态。
package hfp

// AgFeatures AG 侧特性位集合（+BRSF 应答中上报，HFP v1.8 §4.35.1）
type AgFeatures uint32

const (
	AgFeatureThreeWayCalling     AgFeatures = 1 << 0
	AgFeatureEcNr                AgFeatures = 1 << 1
	AgFeatureVoiceRecognition    AgFeatures = 1 << 2
	AgFeatureInbandRing          AgFeatures = 1 << 3
	AgFeatureVoiceTag            AgFeatures = 1 << 4
	AgFeatureRejectCall          AgFeatures = 1 << 5
	AgFeatureEnhancedCallStatus  AgFeatures = 1 << 6
	AgFeatureEnhancedCallControl AgFeatures = 1 << 7
	AgFeatureExtendedErrors      AgFeatures = 1 << 8
	AgFeatureCodecNegotiation    AgFeatures = 1 << 9
	AgFeatureHfIndicators        AgFeatures = 1 << 10
	AgFeatureEscoS4              AgFeatures = 1 << 11
)

// Has 判断是否包含某特性位
func (f AgFeatures) Has(bit AgFeatures) bool { return f&bit != 0 }

// HfFeatures HF 侧特性位集合（AT+BRSF= 中上报）
type HfFeatures uint32

const (
	HfFeatureEcNr                HfFeatures = 1 << 0
	HfFeatureThreeWayCalling     HfFeatures = 1 << 1
	HfFeatureCliPresentation     HfFeatures = 1 << 2
	HfFeatureVoiceRecognition    HfFeatures = 1 << 3
	HfFeatureRemoteVolumeControl HfFeatures = 1 << 4
	HfFeatureEnhancedCallStatus  HfFeatures = 1 << 5
	HfFeatureEnhancedCallControl HfFeatures = 1 << 6
	HfFeatureCodecNegotiation    HfFeatures = 1 << 7
	HfFeatureHfIndicators        HfFeatures = 1 << 8
	HfFeatureEscoS4              HfFeatures = 1 << 9
)

// Has 判断是否包含某特性位
func (f HfFeatures) Has(bit HfFeatures) bool { return f&bit != 0 }
