package telephony

import (
	"context"

	"github.com/lanwave/hfp-ag/internal/hfp"
)

// ActionSink 接收引擎转发的呼叫控制动作，由呼叫服务实现。
// 返回错误时引擎以否定结果码应答 HF，过程状态保持不变。
type ActionSink interface {
	HandleCallAction(ctx context.Context, action *CallAction) error
}

// UpdateSink 引擎暴露给呼叫服务的更新入口，按连接处理顺序入队。
type UpdateSink interface {
	BroadcastUpdate(ctx context.Context, update *AgUpdate) error
}

// InfoSource 建立 SLC 时引擎需要快照的本机信息，由呼叫服务实现。
type InfoSource interface {
	SubscriberNumbers() []hfp.SubscriberNumber
	OperatorName() string
	IndicatorSnapshot() hfp.IndicatorValues
}
