// Package transcript scores filler-word usage in a transcribed answer. The
// word list comes from the external transcription provider; no speech
// recognition happens here.
package transcript

import (
	"math"
	"strings"
)

// penaltyPerPercent converts filler percentage to score loss. The x5 slope
// floors the score at a 20% filler rate while leaving moderate usage (2-5%)
// lightly penalized.
const penaltyPerPercent = 5.0

// DefaultFillers is the stock filler vocabulary for English answers.
func DefaultFillers() map[string]struct{} {
	words := []string{
		"um", "uh", "like", "you know", "so", "well",
		"actually", "basically", "literally", "right",
		"okay", "alright", "yeah", "yes", "no", "hmm",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Detect returns the filler words found in the word list, lowercased, with
// trailing punctuation stripped before matching.
func Detect(words []string, fillers map[string]struct{}) []string {
	var found []string
	for _, w := range words {
		normalized := strings.ToLower(strings.Trim(w, ".,!?"))
		if _, ok := fillers[normalized]; ok {
			found = append(found, normalized)
		}
	}
	return found
}

// Score maps filler frequency to [0,100]. An empty word list scores 100:
// absence of speech is not penalized as filler-heavy.
func Score(words []string, fillers map[string]struct{}) float64 {
	if len(words) == 0 {
		return 100
	}
	fillerPct := float64(len(Detect(words, fillers))) / float64(len(words)) * 100
	return math.Max(0, 100-fillerPct*penaltyPerPercent)
}

// ScoreCounts is Score for callers that already hold counts instead of the
// raw word list.
func ScoreCounts(fillerCount, totalWords int) float64 {
	if totalWords == 0 {
		return 100
	}
	fillerPct := float64(fillerCount) / float64(totalWords) * 100
	return math.Max(0, 100-fillerPct*penaltyPerPercent)
}
