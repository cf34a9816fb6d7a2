package at

import "bytes"

// maxLineLen 单行上限；超限视为垃圾数据，截断为一条非法命令以便按序回复 ERROR
const maxLineLen = 512

// StreamDecoder 把 HF 入站字节流切分为命令行。
// 以 \r 为行终止符，兼容 \r\n；空行忽略。解码器自身不保证行内容合法，
// 非法行以 KindInvalid 命令交给上层，保持应答顺序与触发顺序一致。
type StreamDecoder struct {
	buf []byte
}

func NewStreamDecoder() *StreamDecoder { return &StreamDecoder{} }

// Feed 追加收到的字节并返回本次可完整切分出的命令（可能为空）
func (d *StreamDecoder) Feed(p []byte) []*Command {
	d.buf = append(d.buf, p...)
	var out []*Command
	for {
		i := bytes.IndexByte(d.buf, '\r')
		if i < 0 {
			if len(d.buf) > maxLineLen {
				out = append(out, &Command{Kind: KindInvalid, Raw: string(d.buf[:maxLineLen])})
				d.buf = d.buf[:0]
			}
			return out
		}
		line := string(d.buf[:i])
		d.buf = d.buf[i+1:]
		if len(d.buf) > 0 && d.buf[0] == '\n' {
			d.buf = d.buf[1:]
		}
		trimmed := bytes.TrimSpace([]byte(line))
		if len(trimmed) == 0 {
			continue
		}
		out = append(out, ParseCommand(string(trimmed)))
	}
}

// Pending 返回缓冲中尚未成行的字节数
func (d *StreamDecoder) Pending() int { return len(d.buf) }
