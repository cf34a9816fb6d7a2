package procedure

import (
	"errors"
	"fmt"

	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

var (
	errEmptyCodecList = errors.New("empty codec list")
	errBadCodecID     = errors.New("codec id out of range")
)

// UnexpectedHFError HF 发来当前过程状态下不合法的命令。
// Cme 非零时指定应答用的扩展错误码，否则由 CmeOf 给出默认值。
type UnexpectedHFError struct {
	Command *at.Command
	Cme     at.CmeCode
}

func (e *UnexpectedHFError) Error() string {
	return fmt.Sprintf("unexpected command from HF: %q", e.Command.Raw)
}

// UnexpectedAGError 呼叫服务请求了当前过程状态下不合法的更新
type UnexpectedAGError struct {
	Update *telephony.AgUpdate
}

func (e *UnexpectedAGError) Error() string {
	return fmt.Sprintf("unexpected AG update: %s", e.Update)
}

// FailHF 构造 HF 时序错误效果
func FailHF(cmd *at.Command) Request {
	return Fail(&UnexpectedHFError{Command: cmd})
}

// FailHFCode 构造带指定扩展错误码的 HF 时序错误效果
func FailHFCode(cmd *at.Command, code at.CmeCode) Request {
	return Fail(&UnexpectedHFError{Command: cmd, Cme: code})
}

// FailAG 构造 AG 时序错误效果
func FailAG(up *telephony.AgUpdate) Request {
	return Fail(&UnexpectedAGError{Update: up})
}

// CmeOf 返回错误对应的扩展错误码（用于 AT+CMEE=1 时的否定应答）
func CmeOf(err error) at.CmeCode {
	var hf *UnexpectedHFError
	if errors.As(err, &hf) && hf.Cme != 0 {
		return hf.Cme
	}
	return at.CmeOperationNotAllowed
}
