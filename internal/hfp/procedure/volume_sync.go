package procedure

import (
	"github.com/lanwave/hfp-ag/internal/at"
	"github.com/lanwave/hfp-ag/internal/hfp"
	"github.com/lanwave/hfp-ag/internal/telephony"
)

// VolumeSync 音量同步（HFP v1.8 §4.29）。
// HF 路径：AT+VGS=/AT+VGM= 上报本地音量；AG 路径：+VGS/+VGM 推送，
// 要求 HF 具备远程音量控制特性。
type VolumeSync struct {
	done bool
}

func newVolumeSync() *VolumeSync { return &VolumeSync{} }

func (p *VolumeSync) Marker() Marker { return MarkerVolumeSync }

func (p *VolumeSync) Terminated() bool { return p.done }

func (p *VolumeSync) HFUpdate(cmd *at.Command, st *hfp.SlcState) Request {
	if p.done {
		return FailHF(cmd)
	}
	var speaker bool
	switch {
	case cmd.Is(at.NameVGS, at.KindSet):
		speaker = true
	case cmd.Is(at.NameVGM, at.KindSet):
		speaker = false
	default:
		return FailHF(cmd)
	}
	v, err := cmd.IntArg(0)
	if err != nil || v < hfp.GainMin || v > hfp.GainMax {
		return FailHF(cmd)
	}
	if speaker {
		st.SpeakerGain = v
	} else {
		st.MicrophoneGain = v
	}
	p.done = true
	return Send(at.Ok())
}

func (p *VolumeSync) AGUpdate(up *telephony.AgUpdate, st *hfp.SlcState) Request {
	if p.done || up.Gain == nil {
		return FailAG(up)
	}
	if !st.HfFeatures.Has(hfp.HfFeatureRemoteVolumeControl) {
		return FailAG(up)
	}
	v := up.Gain.Level
	if v < hfp.GainMin || v > hfp.GainMax {
		return FailAG(up)
	}
	switch up.Type {
	case telephony.UpdateSpeakerGain:
		st.SpeakerGain = v
		p.done = true
		return Send(at.Infof("+VGS: %d", v))
	case telephony.UpdateMicrophoneGain:
		st.MicrophoneGain = v
		p.done = true
		return Send(at.Infof("+VGM: %d", v))
	default:
		return FailAG(up)
	}
}
