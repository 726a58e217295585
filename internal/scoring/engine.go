// Package scoring combines per-modality answer metrics into an overall
// interview confidence score with a weighted average and an interpretation
// band.
package scoring

import (
	"fmt"
	"math"
)

// Component names used as keys in score breakdowns.
const (
	ComponentVoice   = "voice_modulation"
	ComponentEye     = "eye_contact"
	ComponentEmotion = "emotion"
	ComponentFiller  = "filler_words"
)

// Weights assigns a relative importance to each scoring component. The four
// weights must sum to 1.
type Weights struct {
	Voice   float64
	Eye     float64
	Emotion float64
	Filler  float64
}

// DefaultWeights returns the standard component weighting.
func DefaultWeights() Weights {
	return Weights{Voice: 0.40, Eye: 0.25, Emotion: 0.20, Filler: 0.15}
}

const weightTolerance = 1e-9

// Validate checks that every weight is non-negative and the total is 1.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		ComponentVoice:   w.Voice,
		ComponentEye:     w.Eye,
		ComponentEmotion: w.Emotion,
		ComponentFiller:  w.Filler,
	} {
		if v < 0 {
			return fmt.Errorf("scoring: negative weight for %s: %v", name, v)
		}
	}
	sum := w.Voice + w.Eye + w.Emotion + w.Filler
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("scoring: weights sum to %v, want 1", sum)
	}
	return nil
}

// AnswerInput carries the modality metrics for one answered question.
// Pointer fields distinguish "modality absent" from a zero score: a nil
// modality is excluded from that component's average instead of dragging
// it down.
type AnswerInput struct {
	Voice   *VoiceMetrics
	Visual  *VisualMetrics
	Emotion *EmotionMetrics
	Filler  *FillerMetrics
}

// VoiceMetrics is the audio-derived slice of an answer.
type VoiceMetrics struct {
	StabilityScore float64
	ClarityScore   float64
}

// VisualMetrics is the video-derived slice of an answer.
type VisualMetrics struct {
	EyeContactRate float64
	Confidence     float64
	Nervousness    float64
}

// EmotionMetrics comes from the external emotion service.
type EmotionMetrics struct {
	Consistency float64
	Stress      float64
}

// FillerMetrics is the transcript-derived slice of an answer.
type FillerMetrics struct {
	Score float64
}

// ComponentScore is one component's contribution to the overall score.
type ComponentScore struct {
	Score                float64 `json:"score"`
	Weight               float64 `json:"weight"`
	WeightedContribution float64 `json:"weighted_contribution"`
}

// Report is the scored summary of a full interview session.
type Report struct {
	OverallScore   float64                   `json:"overall_score"`
	Interpretation string                    `json:"interpretation"`
	Components     map[string]ComponentScore `json:"components"`
	AnswersScored  int                       `json:"answers_scored"`
}

// Engine turns a session's answer inputs into a Report.
type Engine struct {
	weights Weights
}

// NewEngine builds an Engine, rejecting invalid weights up front so scoring
// itself cannot fail.
func NewEngine(w Weights) (*Engine, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Engine{weights: w}, nil
}

// Score produces the session report. With zero answers every component is 0
// and the interpretation is "No Data".
func (e *Engine) Score(answers []AnswerInput) Report {
	report := Report{
		Components:    make(map[string]ComponentScore, 4),
		AnswersScored: len(answers),
	}

	voice := newAverager()
	eye := newAverager()
	emotion := newAverager()
	filler := newAverager()

	for _, a := range answers {
		if a.Voice != nil {
			voice.add(VoiceScore(*a.Voice))
		}
		if a.Visual != nil {
			eye.add(clamp(a.Visual.EyeContactRate))
		}
		if a.Emotion != nil || a.Visual != nil {
			emotion.add(EmotionScore(a.Visual, a.Emotion))
		}
		if a.Filler != nil {
			filler.add(clamp(a.Filler.Score))
		}
	}

	report.Components[ComponentVoice] = e.component(voice.mean(), e.weights.Voice)
	report.Components[ComponentEye] = e.component(eye.mean(), e.weights.Eye)
	report.Components[ComponentEmotion] = e.component(emotion.mean(), e.weights.Emotion)
	report.Components[ComponentFiller] = e.component(filler.mean(), e.weights.Filler)

	for _, c := range report.Components {
		report.OverallScore += c.WeightedContribution
	}
	report.OverallScore = round2(report.OverallScore)

	if len(answers) == 0 {
		report.Interpretation = "No Data"
	} else {
		report.Interpretation = Interpret(report.OverallScore)
	}
	return report
}

func (e *Engine) component(score, weight float64) ComponentScore {
	score = round2(score)
	return ComponentScore{
		Score:                score,
		Weight:               weight,
		WeightedContribution: score * weight,
	}
}

// VoiceScore blends pitch/energy stability with audio clarity.
func VoiceScore(m VoiceMetrics) float64 {
	return clamp(m.StabilityScore*0.7 + m.ClarityScore*0.3)
}

// EmotionScore derives an emotional-composure score from visual confidence
// and the external consistency/stress estimates. Either source may be
// missing; at least one must be present.
func EmotionScore(visual *VisualMetrics, emotion *EmotionMetrics) float64 {
	var confidence, nervousness, consistency, stress float64
	if visual != nil {
		confidence = visual.Confidence
		nervousness = visual.Nervousness
	}
	if emotion != nil {
		consistency = emotion.Consistency
		stress = emotion.Stress
	}
	return clamp((confidence + consistency) - 0.5*(nervousness+stress))
}

// Interpret maps an overall score to its band label.
func Interpret(score float64) string {
	switch {
	case score >= 85:
		return "Excellent"
	case score >= 70:
		return "Good"
	case score >= 55:
		return "Average"
	case score >= 40:
		return "Below Average"
	default:
		return "Poor"
	}
}

type averager struct {
	sum float64
	n   int
}

func newAverager() *averager { return &averager{} }

func (a *averager) add(v float64) {
	a.sum += v
	a.n++
}

func (a *averager) mean() float64 {
	if a.n == 0 {
		return 0
	}
	return a.sum / float64(a.n)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
