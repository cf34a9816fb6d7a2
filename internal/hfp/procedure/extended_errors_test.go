package procedure

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
)

// TestExtendedErrorsToggle 测试 AT+CMEE 开关
func TestExtendedErrorsToggle(t *testing.T) {
	st := testState()
	p := newExtendedErrors()

	stepSend(t, p, st, "AT+CMEE=1")
	assert.True(t, st.ExtendedErrors)
	assert.True(t, p.Terminated())

	st2 := testState()
	st2.ExtendedErrors = true
	stepSend(t, newExtendedErrors(), st2, "AT+CMEE=0")
	assert.False(t, st2.ExtendedErrors)
}

// TestExtendedErrorsGating 测试特性缺失与参数校验
func TestExtendedErrorsGating(t *testing.T) {
	st := testState()
	st.AgFeatures &^= hfp.AgFeatureExtendedErrors
	p := newExtendedErrors()

	req := p.HFUpdate(mustCmd(t, "AT+CMEE=1"), st)
	assert.Equal(t, RequestError, req.Kind)
	assert.Equal(t, at.CmeOperationNotSupported, CmeOf(req.Err))
	assert.False(t, st.ExtendedErrors)

	st = testState()
	req = newExtendedErrors().HFUpdate(mustCmd(t, "AT+CMEE=2"), st)
	assert.Equal(t, RequestError, req.Kind)
	assert.False(t, st.ExtendedErrors)
}
