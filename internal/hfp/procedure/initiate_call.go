package procedure

import (
	"strconv"
	"strings"

	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// InitiateCall HF 发起呼出（HFP v1.8 §4.18–§4.20）：
// ATD<number>; 按号码拨号、ATD><mem>; 记忆位拨号、AT+BLDN 重拨。
// 已有呼叫建立在进行时不接受新的发起。
type InitiateCall struct {
	done bool
}

func newInitiateCall() *InitiateCall { return &InitiateCall{} }

func (p *InitiateCall) Marker() Marker { return MarkerInitiateCall }

func (p *InitiateCall) Terminated() bool { return p.done }

func (p *InitiateCall) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	if p.done {
		return FailHF(cmd)
	}
	var dial *telephony.DialPayload
	switch {
	case cmd.Is(at.NameDial, at.KindExec):
		d, errReq := parseDialString(cmd)
		if d == nil {
			return errReq
		}
		dial = d
	case cmd.Is(at.NameBLDN, at.KindExec):
		dial = &telephony.DialPayload{Redial: true}
	default:
		return FailHF(cmd)
	}
	if st.Indicators.CallSetup != hfp.CallSetupNone {
		return FailHFCode(cmd, at.CmeOperationNotAllowed)
	}
	p.done = true
	action := &telephony.CallAction{Type: telephony.ActionInitiateCall, Dial: dial}
	return SendAction(action, at.Ok())
}

func (p *InitiateCall) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	return FailAG(up)
}

// parseDialString 解析 ATD 的拨号串；失败时第二个返回值携带否定效果
func parseDialString(cmd *at.Command) (*telephony.DialPayload, Request) {
	raw := strings.TrimSuffix(strings.TrimSpace(cmd.Arg(0)), ";")
	if raw == "" {
		return nil, FailHFCode(cmd, at.CmeInvalidDialString)
	}
	if strings.HasPrefix(raw, ">") {
		idx := strings.TrimSpace(raw[1:])
		if n, err := strconv.Atoi(idx); err != nil || n <= 0 {
			return nil, FailHFCode(cmd, at.CmeInvalidIndex)
		}
		return &telephony.DialPayload{Target: idx, Memory: true}, Request{}
	}
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '*' || r == '#' || r == '+' ||
			(r >= 'A' && r <= 'C') || (r >= 'a' && r <= 'c') {
			continue
		}
		return nil, FailHFCode(cmd, at.CmeInvalidDialString)
	}
	return &telephony.DialPayload{Target: raw}, Request{}
}
