// Package media decodes uploaded audio and video payloads into the sample
// and frame forms the analysis packages consume.
package media

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"

	"github.com/ramandeep-singh77/IntervueAi/internal/utils"
)

// PCM is decoded mono audio normalized to [-1,1].
type PCM struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the clip length in seconds.
func (p PCM) Duration() float64 {
	if p.SampleRate == 0 {
		return 0
	}
	return float64(len(p.Samples)) / float64(p.SampleRate)
}

// DecodeAudio decodes a WAV or MP3 payload into mono PCM. WAV is tried
// first since it is what browser recorders upload; MP3 is the fallback
// path for pre-recorded answers.
func DecodeAudio(data []byte) (PCM, error) {
	const op = "media.DecodeAudio"
	if len(data) == 0 {
		return PCM{}, utils.E(utils.CodeInvalidArgument, op, "empty audio payload", nil)
	}
	if pcm, err := decodeWAV(data); err == nil {
		return pcm, nil
	}
	pcm, err := decodeMP3(data)
	if err != nil {
		return PCM{}, utils.E(utils.CodeInvalidArgument, op, "unsupported or corrupt audio payload", err)
	}
	return pcm, nil
}

func decodeWAV(data []byte) (PCM, error) {
	const op = "media.decodeWAV"
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return PCM{}, utils.E(utils.CodeInvalidArgument, op, "not a valid wav file", nil)
	}
	var buf *audio.IntBuffer
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return PCM{}, utils.E(utils.CodeInternal, op, "read wav pcm", err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 {
		return PCM{}, utils.E(utils.CodeInvalidArgument, op, "wav missing format header", nil)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	scale := float64(int64(1) << (dec.BitDepth - 1))
	if dec.BitDepth == 0 {
		scale = 1 << 15
	}

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c]) / scale
		}
		samples[i] = clampSample(sum / float64(channels))
	}
	return PCM{Samples: samples, SampleRate: buf.Format.SampleRate}, nil
}

// decodeMP3 reads the full stream. go-mp3 always emits 16-bit little-endian
// stereo regardless of the source channel count.
func decodeMP3(data []byte) (PCM, error) {
	const op = "media.decodeMP3"
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return PCM{}, utils.E(utils.CodeInvalidArgument, op, "not a valid mp3 stream", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return PCM{}, utils.E(utils.CodeInternal, op, "read mp3 pcm", err)
	}

	frames := len(raw) / 4
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		left := int16(binary.LittleEndian.Uint16(raw[i*4:]))
		right := int16(binary.LittleEndian.Uint16(raw[i*4+2:]))
		samples[i] = clampSample((float64(left) + float64(right)) / 2 / 32768)
	}
	return PCM{Samples: samples, SampleRate: dec.SampleRate()}, nil
}

func clampSample(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
