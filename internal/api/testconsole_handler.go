package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lanwave/hfp-ag/internal/callsim"
	"github.com/lanwave/hfp-ag/internal/hfp"
)

// TestConsoleHandler 内部测试控制台处理器。
// 面向测试/运维人员，直接驱动模拟话机制造来电、网络波动等场景，
// 观察引擎向各 HF 链路的下行行为。
type TestConsoleHandler struct {
	sim    *callsim.Simulator
	logger *zap.Logger
}

// NewTestConsoleHandler 创建测试控制台处理器
func NewTestConsoleHandler(sim *callsim.Simulator, logger *zap.Logger) *TestConsoleHandler {
	return &TestConsoleHandler{sim: sim, logger: logger}
}

// IncomingCallRequest 模拟来电请求
type IncomingCallRequest struct {
	Number string `json:"number" binding:"required"`
}

// IncomingCall 制造一路来电
func (h *TestConsoleHandler) IncomingCall(c *gin.Context) {
	var req IncomingCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if err := h.sim.IncomingCall(req.Number); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	h.logger.Info("console: incoming call injected", zap.String("number", req.Number))
	c.JSON(http.StatusOK, gin.H{"status": "ringing", "number": req.Number})
}

// RemoteAnswer 对端接听
func (h *TestConsoleHandler) RemoteAnswer(c *gin.Context) {
	if err := h.sim.RemoteAnswer(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "answered"})
}

// RemoteHangup 对端挂断
func (h *TestConsoleHandler) RemoteHangup(c *gin.Context) {
	if err := h.sim.RemoteHangup(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "hung-up"})
}

// LevelRequest 单个数值参数
type LevelRequest struct {
	Value int `json:"value"`
}

// SetSignal 调整信号强度
func (h *TestConsoleHandler) SetSignal(c *gin.Context) {
	var req LevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if err := h.sim.SetSignal(req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signal": req.Value})
}

// SetBattery 调整电量
func (h *TestConsoleHandler) SetBattery(c *gin.Context) {
	var req LevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if err := h.sim.SetBattery(req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"battery": req.Value})
}

// SwitchRequest 开关参数
type SwitchRequest struct {
	On bool `json:"on"`
}

// SetService 切换网络注册状态
func (h *TestConsoleHandler) SetService(c *gin.Context) {
	var req SwitchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	h.sim.SetService(req.On)
	c.JSON(http.StatusOK, gin.H{"service": req.On})
}

// SetRoam 切换漫游状态
func (h *TestConsoleHandler) SetRoam(c *gin.Context) {
	var req SwitchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	h.sim.SetRoam(req.On)
	c.JSON(http.StatusOK, gin.H{"roam": req.On})
}

// SetInbandRing 切换带内铃音
func (h *TestConsoleHandler) SetInbandRing(c *gin.Context) {
	var req SwitchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	h.sim.SetInbandRing(req.On)
	c.JSON(http.StatusOK, gin.H{"inband_ring": req.On})
}

// OperatorRequest 运营商名称
type OperatorRequest struct {
	Name string `json:"name" binding:"required"`
}

// SetOperator 更新运营商名称
func (h *TestConsoleHandler) SetOperator(c *gin.Context) {
	var req OperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	h.sim.SetOperator(req.Name)
	c.JSON(http.StatusOK, gin.H{"operator": req.Name})
}

// SetSpeakerGain 推送扬声器音量
func (h *TestConsoleHandler) SetSpeakerGain(c *gin.Context) {
	var req LevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if err := h.sim.SetSpeakerGain(req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"speaker_gain": req.Value})
}

// SetMicrophoneGain 推送麦克风音量
func (h *TestConsoleHandler) SetMicrophoneGain(c *gin.Context) {
	var req LevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if err := h.sim.SetMicrophoneGain(req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"microphone_gain": req.Value})
}

// CodecRequest 编解码协商请求；Codec 留空时由引擎按优先级挑选
type CodecRequest struct {
	Codec string `json:"codec"`
}

// StartCodecNegotiation 触发编解码协商
func (h *TestConsoleHandler) StartCodecNegotiation(c *gin.Context) {
	var req CodecRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	codec := hfp.CodecNone
	switch strings.ToLower(strings.TrimSpace(req.Codec)) {
	case "":
	case "cvsd":
		codec = hfp.CodecCVSD
	case "msbc":
		codec = hfp.CodecMSBC
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown codec %q", req.Codec)})
		return
	}
	h.sim.StartCodecNegotiation(codec)
	c.JSON(http.StatusOK, gin.H{"status": "negotiating", "codec": req.Codec})
}

// MemoryRequest 记忆拨号槽位
type MemoryRequest struct {
	Slot   int    `json:"slot" binding:"required"`
	Number string `json:"number"`
}

// SetMemory 写入记忆拨号槽位（Number 为空表示清除）
func (h *TestConsoleHandler) SetMemory(c *gin.Context) {
	var req MemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if err := h.sim.SetMemory(req.Slot, req.Number); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"slot": req.Slot, "number": req.Number})
}
