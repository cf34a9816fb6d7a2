package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lanwave/hfp-ag/internal/callsim"
	"github.com/lanwave/hfp-ag/internal/eventbus"
	"github.com/lanwave/hfp-ag/internal/slc"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// ReadOnlyHandler 只读API处理器：链路、话机与事件的观测面
type ReadOnlyHandler struct {
	mgr      *slc.Manager
	sim      *callsim.Simulator
	recorder *eventbus.Recorder
	logger   *zap.Logger
}

// NewReadOnlyHandler 创建只读API处理器
func NewReadOnlyHandler(
	mgr *slc.Manager,
	sim *callsim.Simulator,
	recorder *eventbus.Recorder,
	logger *zap.Logger,
) *ReadOnlyHandler {
	return &ReadOnlyHandler{
		mgr:      mgr,
		sim:      sim,
		recorder: recorder,
		logger:   logger,
	}
}

// ListPeers 查询全部链路
func (h *ReadOnlyHandler) ListPeers(c *gin.Context) {
	snaps := h.mgr.Snapshots()
	c.JSON(http.StatusOK, gin.H{
		"count":       len(snaps),
		"established": h.mgr.EstablishedCount(),
		"peers":       snaps,
	})
}

// GetPeer 查询单条链路
func (h *ReadOnlyHandler) GetPeer(c *gin.Context) {
	id := c.Param("id")
	peer, ok := h.mgr.Peer(telephony.PeerID(id))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "peer not found"})
		return
	}
	snap, ok := peer.Snapshot()
	if !ok {
		c.JSON(http.StatusGone, gin.H{"error": "peer closed"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetPhone 查询模拟话机状态
func (h *ReadOnlyHandler) GetPhone(c *gin.Context) {
	if h.sim == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "call simulator disabled"})
		return
	}
	c.JSON(http.StatusOK, h.sim.Snapshot())
}

// ListEvents 查询最近的引擎事件
func (h *ReadOnlyHandler) ListEvents(c *gin.Context) {
	if h.recorder == nil {
		c.JSON(http.StatusOK, gin.H{"events": []eventbus.Event{}})
		return
	}
	limit := 100
	if v := c.Query("limit"); v != "" {
		if vv, e := strconv.Atoi(v); e == nil && vv > 0 {
			limit = vv
		}
	}
	events := h.recorder.Recent(limit)
	c.JSON(http.StatusOK, gin.H{"count": len(events), "events": events})
}
