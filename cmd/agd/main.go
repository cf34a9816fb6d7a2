package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lanwave/hfp-ag/internal/api"
	"github.com/lanwave/hfp-ag/internal/api/middleware"
	"github.com/lanwave/hfp-ag/internal/callsim"
	cfgpkg "github.com/lanwave/hfp-ag/internal/config"
	"github.com/lanwave/hfp-ag/internal/eventbus"
	"github.com/lanwave/hfp-ag/internal/health"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/httpserver"
	"github.com/lanwave/hfp-ag/internal/logging"
	"github.com/lanwave/hfp-ag/internal/metrics"
	"github.com/lanwave/hfp-ag/internal/slc"
	"github.com/lanwave/hfp-ag/internal/tcpserver"
)

func main() {
	// 1) 加载配置
	cfg, err := cfgpkg.Load("")
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	log := zap.L()

	// 3) 指标注册与处理器
	reg := metrics.NewRegistry()
	appm := metrics.NewAppMetrics(reg)
	metricsHandler := metrics.Handler(reg)

	// 4) 事件总线与近期事件缓存
	bus := eventbus.New(0)
	recorder := eventbus.NewRecorder(bus, 0)

	// 5) 模拟话机（本地电话栈）
	sim := callsim.New(cfg.Callsim, log)

	// 6) HF 指示器登记表：默认表 + 可选 YAML 扩展
	registry := hfp.DefaultHfIndicatorRegistry()
	if cfg.HFP.HfIndicatorFile != "" {
		loaded, err := hfp.LoadHfIndicatorRegistry(cfg.HFP.HfIndicatorFile)
		if err != nil {
			log.Fatal("hf indicator registry load error", zap.Error(err))
		}
		registry.Merge(loaded)
	}

	// 7) SLC 管理器（引擎核心）
	codecs, err := cfg.HFP.CodecIDs()
	if err != nil {
		log.Fatal("codec config error", zap.Error(err))
	}
	mgr := slc.NewManager(slc.ManagerParams{
		Logger:           log,
		Actions:          sim,
		Info:             sim,
		Metrics:          appm,
		Bus:              bus,
		AgFeatures:       cfg.HFP.Features.AgFeatures(),
		AgCodecs:         codecs,
		Registry:         registry,
		HandshakeTimeout: cfg.HFP.HandshakeTimeout,
	})
	sim.SetSink(mgr)

	// 8) TCP 链路层（RFCOMM 仿真）
	tcpSrv := tcpserver.New(cfg.TCP, log)
	tcpSrv.SetMetricsCallbacks(
		func() { appm.TCPAccepted.Inc() },
		func(n int) { appm.TCPBytesReceived.Add(float64(n)) },
		func(n int) { appm.TCPBytesSent.Add(float64(n)) },
	)
	tcpSrv.SetHandler(func(cc *tcpserver.ConnContext) {
		peer := mgr.Attach(cc)
		cc.SetOnRead(peer.HandleBytes)
	})

	// 9) HTTP 运维面：健康检查、指标、观测与测试控制台
	readiness := health.New()
	aggregator := health.NewAggregator(
		health.NewTCPChecker(tcpSrv),
		health.NewEngineChecker(mgr),
	)
	httpSrv := httpserver.New(cfg.HTTP, cfg.Metrics.Path, metricsHandler, readiness.Ready)
	health.RegisterHTTPRoutes(httpSrv.Engine(), aggregator)

	authCfg := middleware.AuthConfig{
		Enabled: cfg.API.Enable && cfg.API.Key != "",
		APIKeys: []string{cfg.API.Key},
	}
	api.RegisterReadOnlyRoutes(httpSrv.Engine(), mgr, sim, recorder, authCfg, log)
	api.RegisterTestConsoleRoutes(httpSrv.Engine(), sim, authCfg, log)

	// 并行启动
	go func() {
		if err := httpSrv.Start(); err != nil {
			log.Error("http server error", zap.Error(err))
		}
	}()
	if err := tcpSrv.Start(); err != nil {
		log.Fatal("tcp server start error", zap.Error(err))
	}
	readiness.SetTCPReady(true)
	readiness.SetEngineReady(true)
	log.Info("ag started",
		zap.String("tcp_addr", cfg.TCP.Addr),
		zap.String("http_addr", cfg.HTTP.Addr),
		zap.Uint32("ag_features", uint32(cfg.HFP.Features.AgFeatures())),
		zap.Strings("codecs", cfg.HFP.Codecs),
	)

	// 信号处理，优雅关闭
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	readiness.SetTCPReady(false)
	readiness.SetEngineReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mgr.CloseAll(ctx)
	_ = tcpSrv.Shutdown(ctx)
	_ = httpSrv.Shutdown(ctx)
	recorder.Close()
	bus.Close()
	log.Info("ag stopped")
}
