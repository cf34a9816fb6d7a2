package procedure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// TestInbandRingToggle 测试 +BSIR 推送与状态同步
func TestInbandRingToggle(t *testing.T) {
	st := testState()
	assert.True(t, st.InbandRing, "特性开启时初值为开")

	off := &telephony.AgUpdate{Type: telephony.UpdateInbandRing, InbandRing: &telephony.InbandRingPayload{Enabled: false}}
	p := newInbandRing()
	req := p.AGUpdate(off, st)
	require.Equal(t, RequestSend, req.Kind)
	assert.Equal(t, []at.Response{at.Response("+BSIR: 0")}, req.Messages)
	assert.False(t, st.InbandRing)
	assert.True(t, p.Terminated())

	on := &telephony.AgUpdate{Type: telephony.UpdateInbandRing, InbandRing: &telephony.InbandRingPayload{Enabled: true}}
	req = newInbandRing().AGUpdate(on, st)
	require.Equal(t, RequestSend, req.Kind)
	assert.Equal(t, []at.Response{at.Response("+BSIR: 1")}, req.Messages)
	assert.True(t, st.InbandRing)
}

// TestInbandRingFeatureGate 测试无带内铃音特性时开启不合法
func TestInbandRingFeatureGate(t *testing.T) {
	st := testState()
	st.AgFeatures &^= hfp.AgFeatureInbandRing
	st.InbandRing = false

	on := &telephony.AgUpdate{Type: telephony.UpdateInbandRing, InbandRing: &telephony.InbandRingPayload{Enabled: true}}
	req := newInbandRing().AGUpdate(on, st)
	assert.Equal(t, RequestError, req.Kind)
	assert.False(t, st.InbandRing)

	// 关闭随时合法
	off := &telephony.AgUpdate{Type: telephony.UpdateInbandRing, InbandRing: &telephony.InbandRingPayload{Enabled: false}}
	req = newInbandRing().AGUpdate(off, st)
	assert.Equal(t, RequestSend, req.Kind)
}
