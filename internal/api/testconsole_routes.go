package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lanwave/hfp-ag/internal/api/middleware"
	"github.com/lanwave/hfp-ag/internal/callsim"
)

// RegisterTestConsoleRoutes 注册内部测试控制台路由
// 仅供内部测试/运维人员使用，需要严格的访问控制
func RegisterTestConsoleRoutes(
	r *gin.Engine,
	sim *callsim.Simulator,
	authCfg middleware.AuthConfig,
	logger *zap.Logger,
) {
	if r == nil || sim == nil {
		logger.Info("test console disabled, skipping route registration")
		return
	}

	handler := NewTestConsoleHandler(sim, logger)

	// 内部测试控制台路由组
	internal := r.Group("/internal/console")

	if authCfg.Enabled {
		internal.Use(middleware.APIKeyAuth(authCfg, logger))
		logger.Info("test console authentication enabled")
	} else {
		logger.Warn("test console authentication disabled - only for development!")
	}

	// 呼叫场景
	internal.POST("/incoming-call", handler.IncomingCall)
	internal.POST("/remote-answer", handler.RemoteAnswer)
	internal.POST("/remote-hangup", handler.RemoteHangup)

	// 网络与电量
	internal.POST("/signal", handler.SetSignal)
	internal.POST("/battery", handler.SetBattery)
	internal.POST("/service", handler.SetService)
	internal.POST("/roam", handler.SetRoam)
	internal.POST("/operator", handler.SetOperator)

	// 音频与协商
	internal.POST("/inband-ring", handler.SetInbandRing)
	internal.POST("/speaker-gain", handler.SetSpeakerGain)
	internal.POST("/microphone-gain", handler.SetMicrophoneGain)
	internal.POST("/codec-negotiation", handler.StartCodecNegotiation)

	// 记忆拨号
	internal.POST("/memory", handler.SetMemory)

	logger.Info("test console routes registered", zap.Int("endpoints", 13))
}
