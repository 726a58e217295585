package speech

import "math"

// Pitch tracking parameters. Windows are long enough to cover two periods of
// the lowest tracked pitch at 16 kHz, hopped at half overlap.
const (
	pitchWindow = 1024
	pitchHop    = 512

	// Windows whose best normalized autocorrelation peak falls below this are
	// treated as unvoiced and discarded, not zero-filled.
	minVoicingConfidence = 0.30

	// Windows below this RMS carry no usable periodicity.
	minWindowRMS = 0.005
)

// trackPitch estimates the fundamental frequency per analysis window using
// normalized autocorrelation, keeping only estimates inside [minHz, maxHz].
func trackPitch(samples []float64, sampleRate int, minHz, maxHz float64) []float64 {
	if sampleRate <= 0 || len(samples) < pitchWindow {
		return nil
	}

	minLag := int(float64(sampleRate) / maxHz)
	maxLag := int(float64(sampleRate) / minHz)
	if minLag < 2 {
		minLag = 2
	}
	if maxLag >= pitchWindow {
		maxLag = pitchWindow - 1
	}
	if minLag >= maxLag {
		return nil
	}

	var pitches []float64
	window := make([]float64, pitchWindow)

	for start := 0; start+pitchWindow <= len(samples); start += pitchHop {
		copy(window, samples[start:start+pitchWindow])
		removeDC(window)

		if f0, ok := estimateF0(window, sampleRate, minLag, maxLag); ok {
			pitches = append(pitches, f0)
		}
	}
	return pitches
}

func removeDC(w []float64) {
	var mean float64
	for _, s := range w {
		mean += s
	}
	mean /= float64(len(w))
	for i := range w {
		w[i] -= mean
	}
}

// estimateF0 finds the lag maximizing the normalized autocorrelation of one
// window. The boolean is false for unvoiced or too-quiet windows.
func estimateF0(w []float64, sampleRate, minLag, maxLag int) (float64, bool) {
	var energy float64
	for _, s := range w {
		energy += s * s
	}
	if math.Sqrt(energy/float64(len(w))) < minWindowRMS {
		return 0, false
	}

	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr, e1, e2 float64
		for i := 0; i+lag < len(w); i++ {
			corr += w[i] * w[i+lag]
			e1 += w[i] * w[i]
			e2 += w[i+lag] * w[i+lag]
		}
		denom := math.Sqrt(e1 * e2)
		if denom == 0 {
			continue
		}
		norm := corr / denom
		if norm > bestCorr {
			bestCorr = norm
			bestLag = lag
		}
	}

	if bestLag == 0 || bestCorr < minVoicingConfidence {
		return 0, false
	}

	// Parabolic interpolation around the peak refines the lag estimate below
	// one sample of resolution.
	lag := float64(bestLag)
	if bestLag > minLag && bestLag < maxLag {
		prev := rawCorr(w, bestLag-1)
		peak := rawCorr(w, bestLag)
		next := rawCorr(w, bestLag+1)
		denom := prev - 2*peak + next
		if denom != 0 {
			lag += 0.5 * (prev - next) / denom
		}
	}

	return float64(sampleRate) / lag, true
}

func rawCorr(w []float64, lag int) float64 {
	var corr float64
	for i := 0; i+lag < len(w); i++ {
		corr += w[i] * w[i+lag]
	}
	return corr
}
