package hfp

import "fmt"

// CodecID 编解码标识（Bluetooth Assigned Numbers, Hands-Free Profile）
type CodecID uint8

const (
	CodecNone CodecID = 0 // 未选定
	CodecCVSD CodecID = 1
	CodecMSBC CodecID = 2
)

func (c CodecID) String() string {
	switch c {
	case CodecCVSD:
		return "CVSD"
	case CodecMSBC:
		return "mSBC"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// ContainsCodec 判断列表中是否包含某编解码
func ContainsCodec(ids []CodecID, id CodecID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// SelectCodec 在 AG 与 HF 的可用列表中挑选：宽带（mSBC）优先，回退 CVSD。
// 无交集时返回 CodecNone。
func SelectCodec(ag, hf []CodecID) CodecID {
	if ContainsCodec(ag, CodecMSBC) && ContainsCodec(hf, CodecMSBC) {
		return CodecMSBC
	}
	if ContainsCodec(ag, CodecCVSD) && ContainsCodec(hf, CodecCVSD) {
		return CodecCVSD
	}
	return CodecNone
}
