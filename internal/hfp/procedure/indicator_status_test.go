package procedure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
)

// TestIndicatorStatusQuery 测试建后 AT+CIND? 快照应答
func TestIndicatorStatusQuery(t *testing.T) {
	st := testState()
	st.Indicators.Call = 1
	st.Indicators.CallSetup = hfp.CallSetupNone
	p := newIndicatorStatus()

	req := stepSend(t, p, st, "AT+CIND?")
	require.Len(t, req.Messages, 2)
	assert.Equal(t, at.Response("+CIND: 1,1,0,0,4,0,5"), req.Messages[0])
	assert.Equal(t, at.Ok(), req.Messages[1])
	assert.True(t, p.Terminated())
	assert.Nil(t, req.Action, "纯查询不产生呼叫动作")
}

// TestIndicatorStatusSnapshotNotFiltered 测试 BIA 关闭不影响快照查询
func TestIndicatorStatusSnapshotNotFiltered(t *testing.T) {
	st := testState()
	st.IndicatorsDisabled[hfp.IndicatorSignal] = true
	p := newIndicatorStatus()

	req := stepSend(t, p, st, "AT+CIND?")
	assert.Equal(t, at.Response("+CIND: 1,0,0,0,4,0,5"), req.Messages[0],
		"+CIND 查询给全量快照，BIA 只约束 +CIEV")
}

// TestIndicatorStatusRejections 测试形态不符与重复查询
func TestIndicatorStatusRejections(t *testing.T) {
	st := testState()
	p := newIndicatorStatus()

	req := p.HFUpdate(mustCmd(t, "AT+CIND=?"), st)
	assert.Equal(t, RequestError, req.Kind, "建后测试形态不归本过程")

	stepSend(t, p, st, "AT+CIND?")
	req = p.HFUpdate(mustCmd(t, "AT+CIND?"), st)
	assert.Equal(t, RequestError, req.Kind, "终止后的调用只能报错")
}
