package at

import "fmt"

// 成帧与结果码常量（v.250）
const (
	CRLF        = "\r\n"
	ResultOK    = "OK"
	ResultError = "ERROR"
	ResultRing  = "RING"
)

// Response AG 出站的一行应答或主动上报，写出前按 \r\n<line>\r\n 成帧
type Response string

// Encode 按 v.250 成帧为可直接写入字节流的形式
func (r Response) Encode() []byte {
	return []byte(CRLF + string(r) + CRLF)
}

// Ok 肯定结果码
func Ok() Response { return ResultOK }

// Error 否定结果码
func Error() Response { return ResultError }

// Ring 来电振铃
func Ring() Response { return ResultRing }

// CmeError 扩展否定结果码 +CME ERROR:<code>
func CmeError(code CmeCode) Response {
	return Response(fmt.Sprintf("+CME ERROR: %d", code))
}

// Infof 构造任意信息行，如 +BRSF: 4095、+CIEV: 2,1
func Infof(format string, args ...any) Response {
	return Response(fmt.Sprintf(format, args...))
}
