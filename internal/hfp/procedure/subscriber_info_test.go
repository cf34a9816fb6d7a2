package procedure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
)

// TestSubscriberNumberQuery 测试 AT+CNUM 每号一行应答
func TestSubscriberNumberQuery(t *testing.T) {
	st := testState()
	st.SubscriberNumbers = []hfp.SubscriberNumber{
		{Number: "+15551230001", Service: 4},
		{Number: "5550002", Service: 5},
	}
	p := newSubscriberNumberInformation()

	req := stepSend(t, p, st, "AT+CNUM")
	require.Len(t, req.Messages, 3)
	assert.Equal(t, at.Response(`+CNUM: ,"+15551230001",145,,4`), req.Messages[0])
	assert.Equal(t, at.Response(`+CNUM: ,"5550002",129,,5`), req.Messages[1])
	assert.Equal(t, at.Ok(), req.Messages[2])
	assert.True(t, p.Terminated())
}

// TestSubscriberNumberEmpty 测试无号码时直接 OK
func TestSubscriberNumberEmpty(t *testing.T) {
	st := testState()
	st.SubscriberNumbers = nil

	req := stepSend(t, newSubscriberNumberInformation(), st, "AT+CNUM")
	assert.Equal(t, []at.Response{at.Ok()}, req.Messages)
}

// TestSubscriberNumberServiceDefault 测试服务类别缺省为语音
func TestSubscriberNumberServiceDefault(t *testing.T) {
	st := testState()
	st.SubscriberNumbers = []hfp.SubscriberNumber{{Number: "5550003"}}

	req := stepSend(t, newSubscriberNumberInformation(), st, "AT+CNUM")
	assert.Equal(t, at.Response(`+CNUM: ,"5550003",129,,4`), req.Messages[0])
}

// TestSubscriberNumberWrongForm 测试读取/设置形态不被接受
func TestSubscriberNumberWrongForm(t *testing.T) {
	st := testState()
	req := newSubscriberNumberInformation().HFUpdate(mustCmd(t, "AT+CNUM?"), st)
	assert.Equal(t, RequestError, req.Kind)
}
