package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreEmptyTranscript(t *testing.T) {
	assert.Equal(t, 100.0, Score(nil, DefaultFillers()))
	assert.Equal(t, 100.0, Score([]string{}, DefaultFillers()))
}

func TestScoreNoFillers(t *testing.T) {
	words := strings.Fields("I designed the caching layer and measured latency improvements")
	assert.Equal(t, 100.0, Score(words, DefaultFillers()))
}

func TestScoreEightFillersInHundredWords(t *testing.T) {
	words := make([]string, 0, 100)
	for i := 0; i < 92; i++ {
		words = append(words, "word")
	}
	for i := 0; i < 8; i++ {
		words = append(words, "um")
	}
	assert.InDelta(t, 60.0, Score(words, DefaultFillers()), 1e-9)
}

func TestScoreFloorsAtZero(t *testing.T) {
	words := make([]string, 30)
	for i := range words {
		words[i] = "uh"
	}
	assert.Equal(t, 0.0, Score(words, DefaultFillers()))
}

func TestDetectNormalizesCaseAndPunctuation(t *testing.T) {
	found := Detect([]string{"Um,", "the", "system", "LIKE", "scaled", "well."}, DefaultFillers())
	assert.Equal(t, []string{"um", "like", "well"}, found)
}

func TestScoreCountsMatchesScore(t *testing.T) {
	words := make([]string, 0, 50)
	for i := 0; i < 47; i++ {
		words = append(words, "metric")
	}
	words = append(words, "um", "uh", "basically")
	assert.Equal(t, Score(words, DefaultFillers()), ScoreCounts(3, 50))
}
