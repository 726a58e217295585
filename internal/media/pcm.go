package media

import "encoding/binary"

// Resample converts PCM to the target rate with linear interpolation.
// Quality is fine for speech recognition input; this is not a music path.
func Resample(p PCM, targetRate int) PCM {
	if targetRate <= 0 || p.SampleRate == targetRate {
		return p
	}
	if len(p.Samples) == 0 {
		return PCM{SampleRate: targetRate}
	}

	ratio := float64(p.SampleRate) / float64(targetRate)
	n := int(float64(len(p.Samples)) / ratio)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(p.Samples)-1 {
			out[i] = p.Samples[len(p.Samples)-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = p.Samples[j]*(1-frac) + p.Samples[j+1]*frac
	}
	return PCM{Samples: out, SampleRate: targetRate}
}

// EncodeLINEAR16 packs samples as 16-bit little-endian PCM, the encoding
// the speech recognizer expects.
func EncodeLINEAR16(p PCM) []byte {
	out := make([]byte, len(p.Samples)*2)
	for i, s := range p.Samples {
		v := int16(clampSample(s) * 32767)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}
