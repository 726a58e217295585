// Package stat holds the small numeric helpers shared by the audio and video
// analyzers. All score-shaped values are kept inside [0,100] by ClampScore.
package stat

import (
	"math"
	"sort"
)

func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Std is the population standard deviation.
func Std(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// Stability maps a signal's spread to a 0-100 consistency score:
// 100 - min(100, std/mean*100). A zero mean yields 0, never NaN.
func Stability(mean, std float64) float64 {
	if mean == 0 {
		return 0
	}
	return 100 - math.Min(100, std/mean*100)
}

// CoefVar is std/mean, guarded against a zero mean.
func CoefVar(xs []float64) float64 {
	m := Mean(xs)
	if m == 0 {
		return 0
	}
	return Std(xs) / m
}

func ClampScore(x float64) float64 {
	return math.Max(0, math.Min(100, x))
}

// RMS is the root-mean-square amplitude of a sample window.
func RMS(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x * x
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// Percentile returns the p-th percentile (0-100) using nearest-rank on a
// sorted copy of xs.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
