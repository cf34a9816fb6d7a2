package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lanwave/hfp-ag/internal/hfp"
)

// AppConfig 应用基础信息
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	Pprof        HTTPPprof     `mapstructure:"pprof"`
}

// HTTPPprof HTTP pprof 配置
type HTTPPprof struct {
	Enable bool   `mapstructure:"enable"`
	Prefix string `mapstructure:"prefix"`
}

// TCPConfig RFCOMM 仿真链路（TCP）配置
type TCPConfig struct {
	Addr              string        `mapstructure:"addr"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`
	MaxConnections    int           `mapstructure:"maxConnections"`
	ConnectionBacklog int           `mapstructure:"connectionBacklog"`
	AcceptRate        float64       `mapstructure:"acceptRate"`
	AcceptBurst       int           `mapstructure:"acceptBurst"`
}

// LumberjackConfig 日志滚动（lumberjack）配置
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig 日志级别与输出配置
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig Prometheus 指标暴露配置
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

// APIConfig 运维 API 配置。Key 为空时关闭全部写操作端点。
type APIConfig struct {
	Enable bool   `mapstructure:"enable"`
	Key    string `mapstructure:"key"`
}

// FeaturesConfig AG 特性开关，映射 +BRSF 位图
type FeaturesConfig struct {
	ThreeWayCalling     bool `mapstructure:"threeWayCalling"`
	EcNr                bool `mapstructure:"ecNr"`
	VoiceRecognition    bool `mapstructure:"voiceRecognition"`
	InbandRing          bool `mapstructure:"inbandRing"`
	AttachVoiceTag      bool `mapstructure:"attachVoiceTag"`
	RejectCall          bool `mapstructure:"rejectCall"`
	EnhancedCallStatus  bool `mapstructure:"enhancedCallStatus"`
	EnhancedCallControl bool `mapstructure:"enhancedCallControl"`
	ExtendedErrors      bool `mapstructure:"extendedErrors"`
	CodecNegotiation    bool `mapstructure:"codecNegotiation"`
	HfIndicators        bool `mapstructure:"hfIndicators"`
	EscoS4              bool `mapstructure:"escoS4"`
}

// HFPConfig SLC 引擎配置
type HFPConfig struct {
	HandshakeTimeout time.Duration  `mapstructure:"handshakeTimeout"`
	Codecs           []string       `mapstructure:"codecs"`
	HfIndicatorFile  string         `mapstructure:"hfIndicatorFile"`
	Features         FeaturesConfig `mapstructure:"features"`
}

// CallsimConfig 内置电话栈模拟器配置
type CallsimConfig struct {
	OperatorName     string        `mapstructure:"operatorName"`
	SubscriberNumber string        `mapstructure:"subscriberNumber"`
	RingInterval     time.Duration `mapstructure:"ringInterval"`
	ConnectDelay     time.Duration `mapstructure:"connectDelay"`
	Signal           int           `mapstructure:"signal"`
	Battery          int           `mapstructure:"battery"`
	Roam             bool          `mapstructure:"roam"`
	Service          bool          `mapstructure:"service"`
}

// Config 顶层配置结构
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	TCP     TCPConfig     `mapstructure:"tcp"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	API     APIConfig     `mapstructure:"api"`
	HFP     HFPConfig     `mapstructure:"hfp"`
	Callsim CallsimConfig `mapstructure:"callsim"`
}

// AgFeatures 把特性开关折算成 +BRSF 位图
func (f FeaturesConfig) AgFeatures() hfp.AgFeatures {
	var feats hfp.AgFeatures
	set := func(on bool, bit hfp.AgFeatures) {
		if on {
			feats |= bit
		}
	}
	set(f.ThreeWayCalling, hfp.AgFeatureThreeWayCalling)
	set(f.EcNr, hfp.AgFeatureEcNr)
	set(f.VoiceRecognition, hfp.AgFeatureVoiceRecognition)
	set(f.InbandRing, hfp.AgFeatureInbandRing)
	set(f.AttachVoiceTag, hfp.AgFeatureVoiceTag)
	set(f.RejectCall, hfp.AgFeatureRejectCall)
	set(f.EnhancedCallStatus, hfp.AgFeatureEnhancedCallStatus)
	set(f.EnhancedCallControl, hfp.AgFeatureEnhancedCallControl)
	set(f.ExtendedErrors, hfp.AgFeatureExtendedErrors)
	set(f.CodecNegotiation, hfp.AgFeatureCodecNegotiation)
	set(f.HfIndicators, hfp.AgFeatureHfIndicators)
	set(f.EscoS4, hfp.AgFeatureEscoS4)
	return feats
}

// CodecIDs 把编解码名称列表折算成 ID 列表，遇到未知名称即报错
func (h HFPConfig) CodecIDs() ([]hfp.CodecID, error) {
	out := make([]hfp.CodecID, 0, len(h.Codecs))
	for _, name := range h.Codecs {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "cvsd":
			out = append(out, hfp.CodecCVSD)
		case "msbc":
			out = append(out, hfp.CodecMSBC)
		default:
			return nil, fmt.Errorf("unknown codec %q", name)
		}
	}
	return out, nil
}

// Load 从 YAML/TOML/JSON 文件与环境变量加载配置。
// 若 path 为空，则尝试从环境变量 HFP_CONFIG 读取；否则回退到 configs/example.yaml。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = os.Getenv("HFP_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("example")
		v.SetConfigType("yaml")
	}

	// 默认值
	setDefaults(v)

	// 环境变量覆盖：前缀 HFP_，并将点号替换为下划线
	v.SetEnvPrefix("HFP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 首次运行允许缺少配置文件，依赖默认值与环境变量
		var notFound viper.ConfigFileNotFoundError
		if fmt.Sprintf("%T", err) != fmt.Sprintf("%T", notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "hfp-ag")
	v.SetDefault("app.env", "dev")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "10s")
	v.SetDefault("http.pprof.enable", false)
	v.SetDefault("http.pprof.prefix", "/debug/pprof")

	v.SetDefault("tcp.addr", ":7000")
	v.SetDefault("tcp.readTimeout", "5m")
	v.SetDefault("tcp.writeTimeout", "10s")
	v.SetDefault("tcp.maxConnections", 1024)
	v.SetDefault("tcp.connectionBacklog", 128)
	v.SetDefault("tcp.acceptRate", 64)
	v.SetDefault("tcp.acceptBurst", 128)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file.filename", "logs/hfp-ag.log")
	v.SetDefault("logging.file.maxSize", 100)
	v.SetDefault("logging.file.maxBackups", 7)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("api.enable", true)
	v.SetDefault("api.key", "")

	v.SetDefault("hfp.handshakeTimeout", "10s")
	v.SetDefault("hfp.codecs", []string{"cvsd", "msbc"})
	v.SetDefault("hfp.hfIndicatorFile", "")
	v.SetDefault("hfp.features.threeWayCalling", true)
	v.SetDefault("hfp.features.ecNr", true)
	v.SetDefault("hfp.features.voiceRecognition", false)
	v.SetDefault("hfp.features.inbandRing", true)
	v.SetDefault("hfp.features.attachVoiceTag", false)
	v.SetDefault("hfp.features.rejectCall", true)
	v.SetDefault("hfp.features.enhancedCallStatus", true)
	v.SetDefault("hfp.features.enhancedCallControl", true)
	v.SetDefault("hfp.features.extendedErrors", true)
	v.SetDefault("hfp.features.codecNegotiation", true)
	v.SetDefault("hfp.features.hfIndicators", true)
	v.SetDefault("hfp.features.escoS4", true)

	v.SetDefault("callsim.operatorName", "LanWave")
	v.SetDefault("callsim.subscriberNumber", "+15551230001")
	v.SetDefault("callsim.ringInterval", "3s")
	v.SetDefault("callsim.connectDelay", "2s")
	v.SetDefault("callsim.signal", 4)
	v.SetDefault("callsim.battery", 5)
	v.SetDefault("callsim.roam", false)
	v.SetDefault("callsim.service", true)
}
