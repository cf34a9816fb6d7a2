package hfp

import (
	"fmt"
	"strconv"
	"strings"
)

// HoldAction AT+CHLD=<op> 的动作类别（HFP v1.8 §4.22.2）
type HoldAction int

const (
	HoldReleaseAllHeld          HoldAction = iota // 0: 释放所有保持中/等待中的呼叫
	HoldReleaseActiveAcceptNext                   // 1: 释放当前活动呼叫，接入等待/保持呼叫
	HoldReleaseSpecified                          // 1<idx>: 释放指定呼叫
	HoldActiveAcceptNext                          // 2: 保持当前活动呼叫，接入等待/保持呼叫
	HoldPrivateConsultation                       // 2<idx>: 仅与指定呼叫私聊，其余保持
	HoldAddToConversation                         // 3: 保持呼叫并入会话
	HoldConnectTwoCalls                           // 4: 接通两路呼叫后本机退出（ECT）
)

func (a HoldAction) String() string {
	switch a {
	case HoldReleaseAllHeld:
		return "release_held"
	case HoldReleaseActiveAcceptNext:
		return "release_active_accept"
	case HoldReleaseSpecified:
		return "release_specified"
	case HoldActiveAcceptNext:
		return "hold_active_accept"
	case HoldPrivateConsultation:
		return "private_consultation"
	case HoldAddToConversation:
		return "add_to_conversation"
	case HoldConnectTwoCalls:
		return "connect_two_calls"
	default:
		return fmt.Sprintf("hold(%d)", int(a))
	}
}

// HoldOp 一次解析后的保持操作；Index 仅对 1<idx>/2<idx> 有效
type HoldOp struct {
	Action HoldAction
	Index  int
}

// Enhanced 判断操作是否属于增强呼叫控制（带呼叫索引）
func (op HoldOp) Enhanced() bool {
	return op.Action == HoldReleaseSpecified || op.Action == HoldPrivateConsultation
}

// ParseHoldOp 解析 AT+CHLD= 的参数文本（"0".."4"、"1<idx>"、"2<idx>"）
func ParseHoldOp(s string) (HoldOp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return HoldOp{}, fmt.Errorf("empty hold operation")
	}
	switch s {
	case "0":
		return HoldOp{Action: HoldReleaseAllHeld}, nil
	case "1":
		return HoldOp{Action: HoldReleaseActiveAcceptNext}, nil
	case "2":
		return HoldOp{Action: HoldActiveAcceptNext}, nil
	case "3":
		return HoldOp{Action: HoldAddToConversation}, nil
	case "4":
		return HoldOp{Action: HoldConnectTwoCalls}, nil
	}
	if len(s) >= 2 && (s[0] == '1' || s[0] == '2') {
		idx, err := strconv.Atoi(s[1:])
		if err != nil || idx <= 0 {
			return HoldOp{}, fmt.Errorf("bad call index in hold operation %q", s)
		}
		if s[0] == '1' {
			return HoldOp{Action: HoldReleaseSpecified, Index: idx}, nil
		}
		return HoldOp{Action: HoldPrivateConsultation, Index: idx}, nil
	}
	return HoldOp{}, fmt.Errorf("unknown hold operation %q", s)
}

// HoldOpsLine +CHLD 测试应答体；支持增强呼叫控制时附带 1x/2x
func HoldOpsLine(enhancedCallControl bool) string {
	if enhancedCallControl {
		return "+CHLD: (0,1,1x,2,2x,3,4)"
	}
	return "+CHLD: (0,1,2,3,4)"
}
