package hfp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSelectCodec 测试编解码挑选：宽带优先，无交集为 CodecNone
func TestSelectCodec(t *testing.T) {
	tests := []struct {
		name string
		ag   []CodecID
		hf   []CodecID
		want CodecID
	}{
		{"双方都支持宽带", []CodecID{CodecCVSD, CodecMSBC}, []CodecID{CodecCVSD, CodecMSBC}, CodecMSBC},
		{"HF只有CVSD", []CodecID{CodecCVSD, CodecMSBC}, []CodecID{CodecCVSD}, CodecCVSD},
		{"AG只有CVSD", []CodecID{CodecCVSD}, []CodecID{CodecCVSD, CodecMSBC}, CodecCVSD},
		{"无交集", []CodecID{CodecMSBC}, []CodecID{CodecCVSD}, CodecNone},
		{"HF列表为空", []CodecID{CodecCVSD, CodecMSBC}, nil, CodecNone},
		{"未知编解码被忽略", []CodecID{CodecCVSD}, []CodecID{CodecID(9), CodecCVSD}, CodecCVSD},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectCodec(tt.ag, tt.hf))
		})
	}
}

// TestContainsCodec 测试列表包含判断
func TestContainsCodec(t *testing.T) {
	assert.True(t, ContainsCodec([]CodecID{CodecCVSD, CodecMSBC}, CodecMSBC))
	assert.False(t, ContainsCodec([]CodecID{CodecCVSD}, CodecMSBC))
	assert.False(t, ContainsCodec(nil, CodecCVSD))
}

// TestCodecString 测试显示名
func TestCodecString(t *testing.T) {
	assert.Equal(t, "CVSD", CodecCVSD.String())
	assert.Equal(t, "mSBC", CodecMSBC.String())
	assert.Equal(t, "codec(7)", CodecID(7).String())
}
