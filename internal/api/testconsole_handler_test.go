package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lanwave/hfp-ag/internal/api/middleware"
	"github.com/lanwave/hfp-ag/internal/callsim"
	cfgpkg "github.com/lanwave/hfp-ag/internal/config"
)

// newConsoleRouter 创建挂好测试控制台路由的模拟话机（认证关闭）
func newConsoleRouter() (*gin.Engine, *callsim.Simulator) {
	gin.SetMode(gin.TestMode)
	sim := callsim.New(cfgpkg.CallsimConfig{
		OperatorName:     "LanWave",
		SubscriberNumber: "+15551230001",
		RingInterval:     20 * time.Millisecond,
		ConnectDelay:     30 * time.Millisecond,
		Signal:           4,
		Battery:          5,
		Service:          true,
	}, nil)
	r := gin.New()
	RegisterTestConsoleRoutes(r, sim, middleware.AuthConfig{}, zap.NewNop())
	return r, sim
}

// postJSON 向控制台端点提交 JSON 请求体，body 为空表示无请求体
func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, path, nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// TestConsoleIncomingCallFlow 测试来电注入、对端挂断与冲突拒绝
func TestConsoleIncomingCallFlow(t *testing.T) {
	r, sim := newConsoleRouter()

	w := postJSON(r, "/internal/console/incoming-call", `{"number":"+15550001"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ringing")

	snap := sim.Snapshot()
	require.NotNil(t, snap.Setup)
	assert.Equal(t, "+15550001", snap.Setup.Number)

	// 振铃期间再次注入来电冲突
	w = postJSON(r, "/internal/console/incoming-call", `{"number":"+15550002"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = postJSON(r, "/internal/console/remote-hangup", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, sim.Snapshot().Setup)
}

// TestConsoleIncomingCallValidation 测试缺失号码的请求被拒
func TestConsoleIncomingCallValidation(t *testing.T) {
	r, _ := newConsoleRouter()

	w := postJSON(r, "/internal/console/incoming-call", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(r, "/internal/console/incoming-call", `not-json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestConsoleRemoteAnswerRequiresOutgoing 测试对端接听只对拨出中的呼叫生效
func TestConsoleRemoteAnswerRequiresOutgoing(t *testing.T) {
	r, _ := newConsoleRouter()

	w := postJSON(r, "/internal/console/remote-answer", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = postJSON(r, "/internal/console/remote-hangup", "")
	assert.Equal(t, http.StatusConflict, w.Code, "无呼叫时挂断同样冲突")
}

// TestConsoleIndicatorEndpoints 测试信号、电量与网络开关端点
func TestConsoleIndicatorEndpoints(t *testing.T) {
	r, sim := newConsoleRouter()

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
	}{
		{"信号调整", "/internal/console/signal", `{"value":2}`, http.StatusOK},
		{"信号越界", "/internal/console/signal", `{"value":9}`, http.StatusBadRequest},
		{"电量调整", "/internal/console/battery", `{"value":1}`, http.StatusOK},
		{"电量越界", "/internal/console/battery", `{"value":-1}`, http.StatusBadRequest},
		{"脱网", "/internal/console/service", `{"on":false}`, http.StatusOK},
		{"漫游", "/internal/console/roam", `{"on":true}`, http.StatusOK},
		{"运营商", "/internal/console/operator", `{"name":"Testnet"}`, http.StatusOK},
		{"运营商缺名", "/internal/console/operator", `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, w.Code, "body: %s", w.Body.String())
		})
	}

	snap := sim.Snapshot()
	assert.Equal(t, 2, snap.Signal)
	assert.Equal(t, 1, snap.Battery)
	assert.False(t, snap.Service)
	assert.True(t, snap.Roam)
	assert.Equal(t, "Testnet", snap.Operator)
}

// TestConsoleAudioEndpoints 测试音量、带内铃音与编解码协商端点
func TestConsoleAudioEndpoints(t *testing.T) {
	r, _ := newConsoleRouter()

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
	}{
		{"带内铃音", "/internal/console/inband-ring", `{"on":true}`, http.StatusOK},
		{"扬声器音量", "/internal/console/speaker-gain", `{"value":9}`, http.StatusOK},
		{"扬声器越界", "/internal/console/speaker-gain", `{"value":16}`, http.StatusBadRequest},
		{"麦克风音量", "/internal/console/microphone-gain", `{"value":3}`, http.StatusOK},
		{"麦克风越界", "/internal/console/microphone-gain", `{"value":-1}`, http.StatusBadRequest},
		{"指定msbc协商", "/internal/console/codec-negotiation", `{"codec":"msbc"}`, http.StatusOK},
		{"空体由引擎挑选", "/internal/console/codec-negotiation", "", http.StatusOK},
		{"未知编解码", "/internal/console/codec-negotiation", `{"codec":"opus"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, w.Code, "body: %s", w.Body.String())
		})
	}
}

// TestConsoleMemorySlots 测试记忆拨号槽位写入与清除
func TestConsoleMemorySlots(t *testing.T) {
	r, _ := newConsoleRouter()

	w := postJSON(r, "/internal/console/memory", `{"slot":2,"number":"+15550123"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(r, "/internal/console/memory", `{"slot":0,"number":"+15550123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "binding 拒绝零槽位")
}

// TestConsoleRoutesGuard 测试无模拟话机时跳过注册
func TestConsoleRoutesGuard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterTestConsoleRoutes(r, nil, middleware.AuthConfig{}, zap.NewNop())

	w := postJSON(r, "/internal/console/incoming-call", `{"number":"+15550001"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestConsoleRoutesWithAuth 测试控制台的 Bearer 认证
func TestConsoleRoutesWithAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sim := callsim.New(cfgpkg.CallsimConfig{Signal: 4, Battery: 5, Service: true}, nil)
	r := gin.New()
	RegisterTestConsoleRoutes(r, sim, middleware.AuthConfig{
		Enabled: true,
		APIKeys: []string{"sk_test_0002"},
	}, zap.NewNop())

	w := postJSON(r, "/internal/console/signal", `{"value":2}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/internal/console/signal", strings.NewReader(`{"value":2}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer sk_test_0002")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
