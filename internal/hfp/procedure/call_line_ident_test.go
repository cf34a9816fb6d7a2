package procedure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCallLineIdentToggle 测试 AT+CLIP 开关
func TestCallLineIdentToggle(t *testing.T) {
	st := testState()
	p := newCallLineIdentNotifications()

	stepSend(t, p, st, "AT+CLIP=1")
	assert.True(t, st.CallLineIdent)
	assert.True(t, p.Terminated())

	stepSend(t, newCallLineIdentNotifications(), st, "AT+CLIP=0")
	assert.False(t, st.CallLineIdent)

	req := newCallLineIdentNotifications().HFUpdate(mustCmd(t, "AT+CLIP=2"), st)
	assert.Equal(t, RequestError, req.Kind)
	assert.False(t, st.CallLineIdent)
}
