package procedure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// TestPhoneStatusCiev 测试取值变化产生 +CIEV
func TestPhoneStatusCiev(t *testing.T) {
	st := testState()
	p := newPhoneStatus()

	req := p.AGUpdate(telephony.NewIndicatorUpdate(hfp.IndicatorCallSetup, hfp.CallSetupIncoming), st)
	require.Equal(t, RequestSend, req.Kind)
	assert.Equal(t, []at.Response{at.Response("+CIEV: 3,1")}, req.Messages)
	assert.Equal(t, hfp.CallSetupIncoming, st.Indicators.CallSetup)
	assert.True(t, p.Terminated())
}

// TestPhoneStatusSuppressed 测试上报被抑制时仅同步状态
func TestPhoneStatusSuppressed(t *testing.T) {
	// CMER 总开关未开
	st := testState()
	st.IndicatorEvents = false
	req := newPhoneStatus().AGUpdate(telephony.NewIndicatorUpdate(hfp.IndicatorSignal, 2), st)
	require.Equal(t, RequestSend, req.Kind)
	assert.Empty(t, req.Messages)
	assert.Equal(t, 2, st.Indicators.Signal, "状态仍要同步")

	// BIA 关闭了该指示器
	st = testState()
	st.IndicatorsDisabled[hfp.IndicatorSignal] = true
	req = newPhoneStatus().AGUpdate(telephony.NewIndicatorUpdate(hfp.IndicatorSignal, 1), st)
	require.Equal(t, RequestSend, req.Kind)
	assert.Empty(t, req.Messages)
	assert.Equal(t, 1, st.Indicators.Signal)
}

// TestPhoneStatusInvalidValue 测试越界取值：报错且指示器不动
func TestPhoneStatusInvalidValue(t *testing.T) {
	st := testState()
	before := st.Indicators

	req := newPhoneStatus().AGUpdate(telephony.NewIndicatorUpdate(hfp.IndicatorCallSetup, 9), st)
	assert.Equal(t, RequestError, req.Kind)
	assert.Equal(t, before, st.Indicators)

	req = newPhoneStatus().AGUpdate(telephony.NewIndicatorUpdate(hfp.Indicator(12), 1), st)
	assert.Equal(t, RequestError, req.Kind)
	assert.Equal(t, before, st.Indicators)

	req = newPhoneStatus().AGUpdate(&telephony.AgUpdate{Type: telephony.UpdateIndicator}, st)
	assert.Equal(t, RequestError, req.Kind, "载荷缺失")
}
