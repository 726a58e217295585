// Package speech turns a mono PCM stream into voice-activity statistics,
// prosody (pitch/energy) statistics and an audio-quality estimate. It never
// returns an error: unusable input degrades to a zeroed Result carrying an
// explicit reason, so one bad recording cannot abort a session.
package speech

import (
	"math"

	"github.com/ramandeep-singh77/IntervueAi/internal/analysis/stat"
)

// Degradation reasons attached to a Result. Empty means the analysis ran on
// real signal.
const (
	ReasonDecodeFailed = "decode_failed"
	ReasonNoSignal     = "no_signal"
)

// VoiceActivity is the frame-level speech/silence split.
// SpeechPercentage + SilencePercentage is always exactly 100.
type VoiceActivity struct {
	TotalFrames       int     `json:"total_frames"`
	SpeechFrames      int     `json:"speech_frames"`
	SpeechPercentage  float64 `json:"speech_percentage"`
	SilencePercentage float64 `json:"silence_percentage"`
}

// Prosody holds pitch/energy statistics over speech-bearing frames. All
// fields are zero when the voice-activity ratio is below MinSpeechPercent.
type Prosody struct {
	PitchMean      float64 `json:"pitch_mean"`
	PitchStd       float64 `json:"pitch_std"`
	EnergyMean     float64 `json:"energy_mean"`
	EnergyStd      float64 `json:"energy_std"`
	StabilityScore float64 `json:"stability_score"`
}

// Quality approximates recording quality from the noise floor; QualityScore
// is the clarity input consumed by the scoring engine.
type Quality struct {
	SNR                float64 `json:"snr"`
	ClippingPercentage float64 `json:"clipping_percentage"`
	DynamicRange       float64 `json:"dynamic_range"`
	QualityScore       float64 `json:"quality_score"`
}

type Result struct {
	Duration float64       `json:"duration"`
	Activity VoiceActivity `json:"voice_activity"`
	Prosody  Prosody       `json:"prosody"`
	Quality  Quality       `json:"audio_quality"`

	// HasSpeech reports whether at least 5% of frames carried speech.
	HasSpeech bool `json:"has_speech"`

	// Degraded marks results produced without usable signal; Reason says why,
	// so "zero because silent" and "zero because unreadable" stay distinct.
	Degraded bool   `json:"degraded"`
	Reason   string `json:"reason,omitempty"`
}

type Analyzer struct {
	// FrameMS is the voice-activity frame length in milliseconds.
	FrameMS int
	// EnergyThreshold is the RMS level (on a [-1,1] signal) above which a
	// frame counts as speech.
	EnergyThreshold float64
	// MinPitchHz/MaxPitchHz bound the accepted fundamental-frequency band.
	MinPitchHz float64
	MaxPitchHz float64
	// MinSpeechPercent is the voice-activity ratio below which prosody
	// statistics are not computed.
	MinSpeechPercent float64
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		FrameMS:          30,
		EnergyThreshold:  0.01,
		MinPitchHz:       50,
		MaxPitchHz:       500,
		MinSpeechPercent: 1.0,
	}
}

// DegradedResult is what callers record when decoding failed before any
// samples reached the analyzer.
func DegradedResult(reason string) Result {
	return Result{
		Activity: VoiceActivity{SilencePercentage: 100},
		Degraded: true,
		Reason:   reason,
	}
}

// Analyze runs voice-activity detection, prosody extraction and quality
// estimation over a mono [-1,1] sample stream.
func (a *Analyzer) Analyze(samples []float64, sampleRate int) Result {
	if len(samples) == 0 || sampleRate <= 0 {
		return DegradedResult(ReasonNoSignal)
	}

	res := Result{Duration: float64(len(samples)) / float64(sampleRate)}

	frameRMS := a.frameEnergies(samples, sampleRate)
	res.Activity = a.detectActivity(frameRMS)
	res.HasSpeech = res.Activity.SpeechPercentage > 5.0

	res.Quality = a.estimateQuality(samples, frameRMS)

	// Never fabricate prosody statistics from silence.
	if res.Activity.SpeechPercentage >= a.MinSpeechPercent {
		res.Prosody = a.extractProsody(samples, sampleRate, frameRMS)
	}

	return res
}

// frameEnergies splits samples into fixed-length frames, zero-padding the
// tail, and returns per-frame RMS.
func (a *Analyzer) frameEnergies(samples []float64, sampleRate int) []float64 {
	frameLen := sampleRate * a.FrameMS / 1000
	if frameLen <= 0 {
		return nil
	}

	n := (len(samples) + frameLen - 1) / frameLen
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		start := i * frameLen
		end := start + frameLen
		if end > len(samples) {
			// Tail frame: padding with zeros only dilutes the mean square,
			// which the fixed divisor below accounts for.
			var sum float64
			for _, s := range samples[start:] {
				sum += s * s
			}
			out = append(out, math.Sqrt(sum/float64(frameLen)))
			continue
		}
		out = append(out, stat.RMS(samples[start:end]))
	}
	return out
}

func (a *Analyzer) detectActivity(frameRMS []float64) VoiceActivity {
	if len(frameRMS) == 0 {
		return VoiceActivity{SilencePercentage: 100}
	}

	va := VoiceActivity{TotalFrames: len(frameRMS)}
	for _, rms := range frameRMS {
		if rms > a.EnergyThreshold {
			va.SpeechFrames++
		}
	}
	va.SpeechPercentage = float64(va.SpeechFrames) / float64(va.TotalFrames) * 100
	va.SilencePercentage = 100 - va.SpeechPercentage
	return va
}

func (a *Analyzer) extractProsody(samples []float64, sampleRate int, frameRMS []float64) Prosody {
	var p Prosody

	pitches := trackPitch(samples, sampleRate, a.MinPitchHz, a.MaxPitchHz)
	p.PitchMean = stat.Mean(pitches)
	p.PitchStd = stat.Std(pitches)

	// Energy statistics come from speech-bearing frames only.
	speechRMS := make([]float64, 0, len(frameRMS))
	for _, rms := range frameRMS {
		if rms > a.EnergyThreshold {
			speechRMS = append(speechRMS, rms)
		}
	}
	p.EnergyMean = stat.Mean(speechRMS)
	p.EnergyStd = stat.Std(speechRMS)

	pitchStability := stat.Stability(p.PitchMean, p.PitchStd)
	energyStability := stat.Stability(p.EnergyMean, p.EnergyStd)

	// Pitch steadiness tracks perceived vocal confidence more closely than
	// loudness steadiness, hence the heavier weight.
	p.StabilityScore = pitchStability*0.7 + energyStability*0.3
	return p
}

func (a *Analyzer) estimateQuality(samples []float64, frameRMS []float64) Quality {
	var q Quality

	var signalPower float64
	var clipped int
	var maxAbs, minAbs float64
	minAbs = math.Inf(1)
	for _, s := range samples {
		signalPower += s * s
		abs := math.Abs(s)
		if abs > 0.95 {
			clipped++
		}
		if abs > maxAbs {
			maxAbs = abs
		}
		if abs < minAbs {
			minAbs = abs
		}
	}
	signalPower /= float64(len(samples))

	// The bottom decile of frame energy approximates the noise floor.
	noiseRMS := stat.Percentile(frameRMS, 10)
	noisePower := noiseRMS * noiseRMS

	if noisePower > 0 {
		q.SNR = 10 * math.Log10(signalPower/noisePower)
	} else {
		q.SNR = 20
	}
	q.ClippingPercentage = float64(clipped) / float64(len(samples)) * 100
	q.DynamicRange = maxAbs - minAbs
	q.QualityScore = stat.ClampScore(q.SNR * 5)
	return q
}
