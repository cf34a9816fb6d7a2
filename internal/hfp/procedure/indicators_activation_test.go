package procedure

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
)

// TestIndicatorsActivation 测试 AT+BIA 的按位开关语义
func TestIndicatorsActivation(t *testing.T) {
	st := testState()
	p := newIndicatorsActivation()

	// service 关、call 试图关（被忽略）、signal 关、battchg 留空
	stepSend(t, p, st, "AT+BIA=0,0,0,0,0,1,")
	assert.True(t, st.IndicatorsDisabled[hfp.IndicatorService])
	assert.True(t, st.IndicatorsDisabled[hfp.IndicatorSignal])
	assert.False(t, st.IndicatorsDisabled[hfp.IndicatorCall], "call 永不关闭")
	assert.False(t, st.IndicatorsDisabled[hfp.IndicatorCallSetup], "callsetup 永不关闭")
	assert.False(t, st.IndicatorsDisabled[hfp.IndicatorCallHeld], "callheld 永不关闭")
	assert.False(t, st.IndicatorsDisabled[hfp.IndicatorRoam], "1 表示开启")
	assert.False(t, st.IndicatorsDisabled[hfp.IndicatorBattChg], "空位保持现状")
	assert.True(t, p.Terminated())
}

// TestIndicatorsActivationReenable 测试重新开启清除关闭标记
func TestIndicatorsActivationReenable(t *testing.T) {
	st := testState()
	st.IndicatorsDisabled[hfp.IndicatorSignal] = true

	stepSend(t, newIndicatorsActivation(), st, "AT+BIA=,,,,1,,")
	assert.False(t, st.IndicatorsDisabled[hfp.IndicatorSignal])
}

// TestIndicatorsActivationValidation 测试整行校验：任一参数非法则整行不生效
func TestIndicatorsActivationValidation(t *testing.T) {
	tests := []struct {
		name string
		line string
		cme  at.CmeCode
	}{
		{"取值越界", "AT+BIA=2", at.CmeOperationNotAllowed},
		{"非数字", "AT+BIA=x", at.CmeOperationNotAllowed},
		{"参数过多", "AT+BIA=1,1,1,1,1,1,1,1", at.CmeInvalidIndex},
		{"后段非法", "AT+BIA=0,0,0,0,0,0,9", at.CmeOperationNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := testState()
			p := newIndicatorsActivation()
			req := p.HFUpdate(mustCmd(t, tt.line), st)
			assert.Equal(t, RequestError, req.Kind)
			assert.Equal(t, tt.cme, CmeOf(req.Err))
			assert.Empty(t, st.IndicatorsDisabled, "整行校验失败不得有部分生效")
			assert.False(t, p.Terminated())
		})
	}
}
