package procedure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// TestCallWaitingToggle 测试 AT+CCWA 开关与特性 gating
func TestCallWaitingToggle(t *testing.T) {
	st := testState()
	p := newCallWaitingNotifications()

	stepSend(t, p, st, "AT+CCWA=1")
	assert.True(t, st.CallWaitingNotifications)
	assert.True(t, p.Terminated())

	st.CallWaitingNotifications = true
	stepSend(t, newCallWaitingNotifications(), st, "AT+CCWA=0")
	assert.False(t, st.CallWaitingNotifications)

	noThreeWay := testState()
	noThreeWay.AgFeatures &^= hfp.AgFeatureThreeWayCalling
	req := newCallWaitingNotifications().HFUpdate(mustCmd(t, "AT+CCWA=1"), noThreeWay)
	assert.Equal(t, RequestError, req.Kind)
	assert.Equal(t, at.CmeOperationNotSupported, CmeOf(req.Err))
}

// TestCallWaitingPush 测试 +CCWA 推送依赖通知开关
func TestCallWaitingPush(t *testing.T) {
	st := testState()
	st.CallWaitingNotifications = true
	p := newCallWaitingNotifications()

	up := &telephony.AgUpdate{
		Type:        telephony.UpdateCallWaiting,
		CallWaiting: &telephony.CallWaitingPayload{Number: "+15557654321"},
	}
	req := p.AGUpdate(up, st)
	require.Equal(t, RequestSend, req.Kind)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, at.Response(`+CCWA: "+15557654321",145`), req.Messages[0])
	assert.True(t, p.Terminated())

	// 开关关闭时推送不合法
	off := testState()
	req = newCallWaitingNotifications().AGUpdate(up, off)
	assert.Equal(t, RequestError, req.Kind)

	// 载荷缺失不合法
	bad := &telephony.AgUpdate{Type: telephony.UpdateCallWaiting}
	req = newCallWaitingNotifications().AGUpdate(bad, st)
	assert.Equal(t, RequestError, req.Kind)
}

// TestCallWaitingNationalNumber 测试本地号码的 <type> 取值
func TestCallWaitingNationalNumber(t *testing.T) {
	st := testState()
	st.CallWaitingNotifications = true

	up := &telephony.AgUpdate{
		Type:        telephony.UpdateCallWaiting,
		CallWaiting: &telephony.CallWaitingPayload{Number: "5551234"},
	}
	req := newCallWaitingNotifications().AGUpdate(up, st)
	require.Equal(t, RequestSend, req.Kind)
	assert.Equal(t, at.Response(`+CCWA: "5551234",129`), req.Messages[0])
}
