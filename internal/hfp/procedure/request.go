package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// RequestKind 过程单步效果的标签
type RequestKind int

const (
	RequestNone  RequestKind = iota // 暂无可见效果，过程保持活跃等待后续输入
	RequestSend                     // 按序写出 Messages；可附带一个呼叫动作
	RequestError                    // 时序/协议错误
)

// Request 过程单步产生的效果。过程从不直接写字节流，这是它与
// Dispatcher 之间唯一的意图通道。Messages 允许为空（仅同步状态）。
// Action 非空时 Dispatcher 先同步转发给呼叫服务，失败则以否定结果码
// 取代 Messages。
type Request struct {
	Kind     RequestKind
	Messages []at.Response
	Action   *telephony.CallAction
	Err      error
}

// None 无可见效果
func None() Request { return Request{Kind: RequestNone} }

// Send 按序写出若干应答/上报
func Send(msgs ...at.Response) Request {
	return Request{Kind: RequestSend, Messages: msgs}
}

// SendAction 写出应答并要求呼叫服务执行动作
func SendAction(action *telephony.CallAction, msgs ...at.Response) Request {
	return Request{Kind: RequestSend, Messages: msgs, Action: action}
}

// Fail 报告时序/协议错误
func Fail(err error) Request { return Request{Kind: RequestError, Err: err} }
