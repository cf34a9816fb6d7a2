// Package at 实现 HFP 所用 AT 命令子集的编解码（v.250 文法 + 3GPP TS 27.007 结果码）。
// 入站方向把 HF 的字节流切分成 Command，出站方向把应答/主动上报编码为
// \r\n<line>\r\n 成帧的字节串。引擎仅依赖本包的词法边界，便于替换实现。
package at

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind 命令的语法形态（v.250 四种基本形式）
type Kind int

const (
	KindExec    Kind = iota // AT+CMD 或基本命令 ATA / ATD...
	KindSet                 // AT+CMD=<args>
	KindRead                // AT+CMD?
	KindTest                // AT+CMD=?
	KindInvalid             // 无法识别的行（仍需按序以 ERROR 应答）
)

func (k Kind) String() string {
	switch k {
	case KindExec:
		return "exec"
	case KindSet:
		return "set"
	case KindRead:
		return "read"
	case KindTest:
		return "test"
	default:
		return "invalid"
	}
}

// HFP 用到的命令名（不含 AT 前缀）
const (
	NameAnswer = "A" // ATA 接听
	NameDial   = "D" // ATD<number>; / ATD><mem>; 拨号

	NameBAC  = "+BAC"  // HF 可用编解码列表
	NameBCS  = "+BCS"  // 编解码协商确认
	NameBIA  = "+BIA"  // 指示器上报开关
	NameBIEV = "+BIEV" // HF 指示器值上报
	NameBIND = "+BIND" // HF 指示器协商
	NameBLDN = "+BLDN" // 重拨最后号码
	NameBRSF = "+BRSF" // 特性集交换
	NameCCWA = "+CCWA" // 呼叫等待通知
	NameCHLD = "+CHLD" // 三方通话保持操作
	NameCHUP = "+CHUP" // 挂断
	NameCIND = "+CIND" // 指示器描述/取值
	NameCLIP = "+CLIP" // 来电号码显示
	NameCMEE = "+CMEE" // 扩展错误码开关
	NameCMER = "+CMER" // 指示器事件上报开关
	NameCNUM = "+CNUM" // 本机号码查询
	NameCOPS = "+COPS" // 运营商查询
	NameNREC = "+NREC" // 回声消除/降噪开关
	NameVGM  = "+VGM"  // 麦克风增益
	NameVGS  = "+VGS"  // 扬声器增益
	NameVTS  = "+VTS"  // DTMF 发送
)

// Command 解析后的一条 HF 入站命令
type Command struct {
	Name string   // 命令名，如 "+BRSF"、"D"、"A"
	Kind Kind     // 语法形态
	Args []string // Set 形式的参数（引号内的逗号不切分，成对引号会被剥除）
	Raw  string   // 原始行（不含终止符），用于日志与错误上下文
}

func (c *Command) String() string { return c.Raw }

// Arg 返回第 i 个参数，越界返回空串
func (c *Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// IntArg 按十进制整数解析第 i 个参数
func (c *Command) IntArg(i int) (int, error) {
	s := c.Arg(i)
	if s == "" {
		return 0, fmt.Errorf("missing argument %d in %q", i, c.Raw)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("argument %d in %q: %w", i, c.Raw, err)
	}
	return n, nil
}

// Is 判断命令名与形态是否同时匹配
func (c *Command) Is(name string, kind Kind) bool {
	return c.Name == name && c.Kind == kind
}

// ParseCommand 解析一行已去除终止符的命令文本。
// 大小写不敏感的 AT 前缀；扩展命令按 =? / ? / = 后缀归类形态；
// 基本命令仅识别 HFP 用到的 A 与 D。解析失败返回 KindInvalid。
func ParseCommand(line string) *Command {
	raw := strings.TrimSpace(line)
	cmd := &Command{Kind: KindInvalid, Raw: raw}
	if len(raw) < 3 || !strings.EqualFold(raw[:2], "AT") {
		return cmd
	}
	body := raw[2:]

	if body[0] == '+' {
		switch {
		case strings.HasSuffix(body, "=?"):
			cmd.Name = strings.ToUpper(body[:len(body)-2])
			cmd.Kind = KindTest
		case strings.HasSuffix(body, "?"):
			cmd.Name = strings.ToUpper(body[:len(body)-1])
			cmd.Kind = KindRead
		default:
			if i := strings.IndexByte(body, '='); i >= 0 {
				cmd.Name = strings.ToUpper(body[:i])
				cmd.Kind = KindSet
				cmd.Args = splitArgs(body[i+1:])
			} else {
				cmd.Name = strings.ToUpper(body)
				cmd.Kind = KindExec
			}
		}
		if !validExtendedName(cmd.Name) {
			cmd.Kind = KindInvalid
		}
		return cmd
	}

	// 基本命令：ATA 无参数；ATD 把剩余文本整体作为拨号串
	switch {
	case strings.EqualFold(body, "A"):
		cmd.Name = NameAnswer
		cmd.Kind = KindExec
	case strings.EqualFold(body[:1], "D"):
		cmd.Name = NameDial
		cmd.Kind = KindExec
		cmd.Args = []string{strings.TrimSpace(body[1:])}
	}
	return cmd
}

// validExtendedName 校验扩展命令名仅含 [A-Z0-9]（+ 之后）
func validExtendedName(name string) bool {
	if len(name) < 2 || name[0] != '+' {
		return false
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// splitArgs 按逗号切分参数；双引号内的逗号不切分，成对引号剥除
func splitArgs(s string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case c == ',' && !inQuote:
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	out = append(out, strings.TrimSpace(cur.String()))
	return out
}
