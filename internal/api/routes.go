// Package api 提供引擎的运维 HTTP 接口：链路与话机的只读观测面，
// 以及驱动模拟话机的测试控制台。
package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lanwave/hfp-ag/internal/api/middleware"
	"github.com/lanwave/hfp-ag/internal/callsim"
	"github.com/lanwave/hfp-ag/internal/eventbus"
	"github.com/lanwave/hfp-ag/internal/slc"
)

// RegisterReadOnlyRoutes 注册只读查询路由
func RegisterReadOnlyRoutes(
	r *gin.Engine,
	mgr *slc.Manager,
	sim *callsim.Simulator,
	recorder *eventbus.Recorder,
	authCfg middleware.AuthConfig,
	logger *zap.Logger,
) {
	if r == nil || mgr == nil {
		return
	}

	handler := NewReadOnlyHandler(mgr, sim, recorder, logger)

	api := r.Group("/api/v1")
	if authCfg.Enabled {
		api.Use(middleware.APIKeyAuth(authCfg, logger))
		logger.Info("api authentication enabled", zap.Int("api_keys_count", len(authCfg.APIKeys)))
	} else {
		logger.Warn("api authentication disabled - only for development!")
	}

	// 链路观测
	api.GET("/peers", handler.ListPeers)
	api.GET("/peers/:id", handler.GetPeer)

	// 话机与事件
	api.GET("/phone", handler.GetPhone)
	api.GET("/events", handler.ListEvents)

	logger.Info("readonly routes registered", zap.Int("endpoints", 4))
}
