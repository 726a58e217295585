package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultWeights())
	require.NoError(t, err)
	return e
}

func fullAnswer() AnswerInput {
	return AnswerInput{
		Voice:   &VoiceMetrics{StabilityScore: 70, ClarityScore: 70},
		Visual:  &VisualMetrics{EyeContactRate: 60, Confidence: 70, Nervousness: 20},
		Emotion: &EmotionMetrics{Consistency: 30, Stress: 20},
		Filler:  &FillerMetrics{Score: 90},
	}
}

func TestNewEngineRejectsBadWeights(t *testing.T) {
	_, err := NewEngine(Weights{Voice: 0.5, Eye: 0.5, Emotion: 0.5, Filler: 0.5})
	assert.Error(t, err)

	_, err = NewEngine(Weights{Voice: 1.2, Eye: -0.2, Emotion: 0, Filler: 0})
	assert.Error(t, err)
}

func TestScoreWeightedAverage(t *testing.T) {
	report := mustEngine(t).Score([]AnswerInput{fullAnswer()})

	assert.Equal(t, 70.0, report.Components[ComponentVoice].Score)
	assert.Equal(t, 60.0, report.Components[ComponentEye].Score)
	assert.Equal(t, 80.0, report.Components[ComponentEmotion].Score)
	assert.Equal(t, 90.0, report.Components[ComponentFiller].Score)
	assert.Equal(t, 72.5, report.OverallScore)
	assert.Equal(t, "Good", report.Interpretation)
	assert.Equal(t, 1, report.AnswersScored)
}

func TestScoreZeroAnswers(t *testing.T) {
	report := mustEngine(t).Score(nil)

	assert.Equal(t, 0.0, report.OverallScore)
	assert.Equal(t, "No Data", report.Interpretation)
	assert.Equal(t, 0, report.AnswersScored)
	for _, c := range report.Components {
		assert.Equal(t, 0.0, c.Score)
	}
}

func TestScoreSkipsAbsentModalities(t *testing.T) {
	answers := []AnswerInput{
		{
			Voice:  &VoiceMetrics{StabilityScore: 100, ClarityScore: 100},
			Filler: &FillerMetrics{Score: 100},
		},
		fullAnswer(),
	}
	report := mustEngine(t).Score(answers)

	// Audio-only answer contributes to voice and filler averages but must
	// not pull eye contact or emotion toward zero.
	assert.Equal(t, 85.0, report.Components[ComponentVoice].Score)
	assert.Equal(t, 60.0, report.Components[ComponentEye].Score)
	assert.Equal(t, 80.0, report.Components[ComponentEmotion].Score)
	assert.Equal(t, 95.0, report.Components[ComponentFiller].Score)
}

func TestScoreIsIdempotent(t *testing.T) {
	e := mustEngine(t)
	answers := []AnswerInput{fullAnswer(), fullAnswer()}
	first := e.Score(answers)
	second := e.Score(answers)
	assert.Equal(t, first, second)
}

func TestScoreStaysInBounds(t *testing.T) {
	answers := []AnswerInput{
		{
			Voice:   &VoiceMetrics{StabilityScore: 500, ClarityScore: 500},
			Visual:  &VisualMetrics{EyeContactRate: 300, Confidence: 400, Nervousness: -50},
			Emotion: &EmotionMetrics{Consistency: 400, Stress: -10},
			Filler:  &FillerMetrics{Score: 250},
		},
		{
			Voice:   &VoiceMetrics{StabilityScore: -40, ClarityScore: -40},
			Visual:  &VisualMetrics{EyeContactRate: -5, Confidence: 0, Nervousness: 300},
			Emotion: &EmotionMetrics{Consistency: 0, Stress: 300},
			Filler:  &FillerMetrics{Score: -20},
		},
	}
	report := mustEngine(t).Score(answers)

	assert.GreaterOrEqual(t, report.OverallScore, 0.0)
	assert.LessOrEqual(t, report.OverallScore, 100.0)
	for _, c := range report.Components {
		assert.GreaterOrEqual(t, c.Score, 0.0)
		assert.LessOrEqual(t, c.Score, 100.0)
	}
}

func TestInterpretBands(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{92, "Excellent"},
		{85, "Excellent"},
		{84.99, "Good"},
		{70, "Good"},
		{69.5, "Average"},
		{55, "Average"},
		{54, "Below Average"},
		{40, "Below Average"},
		{39.9, "Poor"},
		{0, "Poor"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Interpret(tc.score), "score %v", tc.score)
	}
}

func TestEmotionScoreVisualOnly(t *testing.T) {
	got := EmotionScore(&VisualMetrics{Confidence: 80, Nervousness: 30}, nil)
	assert.Equal(t, 65.0, got)
}
