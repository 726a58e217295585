package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ramandeep-singh77/IntervueAi/internal/cache"
	"github.com/ramandeep-singh77/IntervueAi/internal/models"
	"github.com/ramandeep-singh77/IntervueAi/internal/providers/llm"
	"github.com/ramandeep-singh77/IntervueAi/internal/scoring"
)

const reportCacheTTL = 10 * time.Minute

// Report is the full feedback package for a session.
type Report struct {
	SessionID       string                 `json:"session_id"`
	Role            string                 `json:"role"`
	ExperienceLevel string                 `json:"experience_level"`
	Scores          scoring.Report         `json:"scores"`
	Analytics       Aggregates             `json:"analytics"`
	Questions       []QuestionResult       `json:"questions"`
	Feedback        Feedback               `json:"feedback"`
	GeneratedAt     time.Time              `json:"generated_at"`
}

// Aggregates are session-wide totals and averages across the latest
// answer per question. Averages cover only answers that carried the
// relevant modality.
type Aggregates struct {
	TotalWords          int     `json:"total_words"`
	TotalFillerWords    int     `json:"total_filler_words"`
	AvgSpeakingRateWPM  float64 `json:"avg_speaking_rate_wpm"`
	AvgVoiceStability   float64 `json:"avg_voice_stability"`
	AvgPitch            float64 `json:"avg_pitch"`
	AvgEnergy           float64 `json:"avg_energy"`
	AvgFaceDetection    float64 `json:"avg_face_detection"`
	SpeechTimeSeconds   float64 `json:"speech_time_seconds"`
}

// QuestionResult pairs a question with its latest answer metrics.
type QuestionResult struct {
	Index    int                   `json:"index"`
	Question string                `json:"question"`
	Answered bool                  `json:"answered"`
	Metrics  *models.AnswerMetrics `json:"metrics,omitempty"`
}

type Feedback struct {
	Overall             string   `json:"overall_feedback"`
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
	ActionPlan          []string `json:"action_plan"`
}

type ReportService interface {
	Generate(ctx context.Context, sessionID string) (*Report, error)
}

type reportService struct {
	sessions SessionService
	engine   *scoring.Engine
	llm      llm.Provider // nil means heuristic feedback only
	cache    cache.Cache  // nil disables caching
	log      *logrus.Entry
}

func NewReportService(sessions SessionService, engine *scoring.Engine, provider llm.Provider, c cache.Cache, log *logrus.Entry) ReportService {
	return &reportService{sessions: sessions, engine: engine, llm: provider, cache: c, log: log}
}

// Generate scores the session and builds feedback. Reports are cached and
// deterministic for a given set of answers; regenerating without new
// answers returns identical scores.
func (s *reportService) Generate(ctx context.Context, sessionID string) (*Report, error) {
	if s.cache != nil {
		var cached Report
		if hit, err := s.cache.GetJSON(ctx, cache.ReportKey(sessionID), &cached); err != nil {
			s.log.WithError(err).Warn("report cache read failed")
		} else if hit {
			return &cached, nil
		}
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	latest := latestAnswers(session)
	report := &Report{
		SessionID:       session.SessionID,
		Role:            session.Role,
		ExperienceLevel: session.ExperienceLevel,
		Scores:          s.engine.Score(scoringInputs(latest)),
		Analytics:       aggregates(latest),
		Questions:       questionResults(session, latest),
		GeneratedAt:     time.Now().UTC(),
	}
	report.Feedback = s.buildFeedback(ctx, session, report)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cache.ReportKey(sessionID), report, reportCacheTTL); err != nil {
			s.log.WithError(err).Warn("report cache write failed")
		}
	}
	return report, nil
}

// latestAnswers resolves the append-only answer log: the last entry per
// question index wins.
func latestAnswers(session *models.InterviewSession) map[int]*models.AnswerMetrics {
	latest := make(map[int]*models.AnswerMetrics, len(session.Questions))
	for i := range session.Answers {
		a := &session.Answers[i]
		latest[a.QuestionIndex] = a
	}
	return latest
}

func aggregates(latest map[int]*models.AnswerMetrics) Aggregates {
	var agg Aggregates
	var rateSum, stabilitySum, pitchSum, energySum, faceSum float64
	var rateN, voiceN, faceN int
	for _, a := range latest {
		agg.TotalWords += a.WordCount
		agg.TotalFillerWords += len(a.FillerWords)
		if a.SpeakingRateWPM > 0 {
			rateSum += a.SpeakingRateWPM
			rateN++
		}
		if a.Voice != nil && !a.Voice.Degraded {
			stabilitySum += a.Voice.StabilityScore
			pitchSum += a.Voice.PitchMean
			energySum += a.Voice.EnergyMean
			agg.SpeechTimeSeconds += a.Voice.DurationSeconds * a.Voice.SpeechPercentage / 100
			voiceN++
		}
		if a.Visual != nil && !a.Visual.Degraded {
			faceSum += a.Visual.FaceDetectionRate
			faceN++
		}
	}
	if rateN > 0 {
		agg.AvgSpeakingRateWPM = round2(rateSum / float64(rateN))
	}
	if voiceN > 0 {
		agg.AvgVoiceStability = round2(stabilitySum / float64(voiceN))
		agg.AvgPitch = round2(pitchSum / float64(voiceN))
		agg.AvgEnergy = round2(energySum / float64(voiceN))
	}
	if faceN > 0 {
		agg.AvgFaceDetection = round2(faceSum / float64(faceN))
	}
	agg.SpeechTimeSeconds = round2(agg.SpeechTimeSeconds)
	return agg
}

func scoringInputs(latest map[int]*models.AnswerMetrics) []scoring.AnswerInput {
	inputs := make([]scoring.AnswerInput, 0, len(latest))
	for _, a := range latest {
		in := scoring.AnswerInput{
			Filler: &scoring.FillerMetrics{Score: a.FillerScore},
		}
		if a.Voice != nil {
			in.Voice = &scoring.VoiceMetrics{
				StabilityScore: a.Voice.StabilityScore,
				ClarityScore:   a.Voice.ClarityScore,
			}
		}
		if a.Visual != nil {
			in.Visual = &scoring.VisualMetrics{
				EyeContactRate: a.Visual.EyeContactRate,
				Confidence:     a.Visual.Confidence,
				Nervousness:    a.Visual.Nervousness,
			}
		}
		if a.EmotionConsistency != nil || a.EmotionStress != nil {
			em := &scoring.EmotionMetrics{}
			if a.EmotionConsistency != nil {
				em.Consistency = *a.EmotionConsistency
			}
			if a.EmotionStress != nil {
				em.Stress = *a.EmotionStress
			}
			in.Emotion = em
		}
		inputs = append(inputs, in)
	}
	return inputs
}

func questionResults(session *models.InterviewSession, latest map[int]*models.AnswerMetrics) []QuestionResult {
	out := make([]QuestionResult, 0, len(session.Questions))
	for _, q := range session.Questions {
		qr := QuestionResult{Index: q.Index, Question: q.Text}
		if a, ok := latest[q.Index]; ok {
			qr.Answered = true
			qr.Metrics = a
		}
		out = append(out, qr)
	}
	return out
}

func (s *reportService) buildFeedback(ctx context.Context, session *models.InterviewSession, report *Report) Feedback {
	if s.llm != nil {
		if fb, err := s.llmFeedback(ctx, session, report); err != nil {
			s.log.WithError(err).WithField("session_id", session.SessionID).Warn("llm feedback failed, using heuristics")
		} else {
			return fb
		}
	}
	return heuristicFeedback(report)
}

func (s *reportService) llmFeedback(ctx context.Context, session *models.InterviewSession, report *Report) (Feedback, error) {
	summary, err := json.Marshal(report.Scores)
	if err != nil {
		return Feedback{}, err
	}
	prompt := fmt.Sprintf(`You are an interview coach. A candidate practiced a %s interview at %s level and these are their measured scores (0-100):

%s

Write constructive feedback. Return ONLY a JSON object with:
- "overall_feedback": 2-3 sentence summary
- "strengths": array of 2-4 short strings
- "areas_for_improvement": array of 2-4 short strings
- "action_plan": array of 2-4 concrete practice steps`, session.Role, session.ExperienceLevel, summary)

	raw, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return Feedback{}, err
	}

	var fb Feedback
	if err := json.Unmarshal([]byte(stripFence(raw)), &fb); err != nil {
		return Feedback{}, fmt.Errorf("parse feedback: %w", err)
	}
	if fb.Overall == "" {
		return Feedback{}, fmt.Errorf("feedback missing overall text")
	}
	return fb, nil
}

// heuristicFeedback derives feedback from the component scores when no LLM
// is available or generation fails.
func heuristicFeedback(report *Report) Feedback {
	fb := Feedback{
		Overall: fmt.Sprintf("You scored %.1f/100 (%s) in your %s interview practice.",
			report.Scores.OverallScore, report.Scores.Interpretation, report.Role),
	}
	if report.Scores.AnswersScored == 0 {
		fb.Overall = fmt.Sprintf("No answers were recorded for your %s interview practice.", report.Role)
		fb.AreasForImprovement = []string{"Record answers to the interview questions to get measured feedback"}
		fb.ActionPlan = []string{"Start a new session and answer at least one question"}
		return fb
	}

	type namedScore struct {
		label, strong, weak, action string
		score                       float64
	}
	components := []namedScore{
		{"voice", "Steady, well-modulated voice", "Voice modulation needs work", "Practice speaking at a steady pace and volume", report.Scores.Components[scoring.ComponentVoice].Score},
		{"eye contact", "Consistent eye contact with the camera", "Eye contact with the camera was inconsistent", "Practice looking at the camera while answering", report.Scores.Components[scoring.ComponentEye].Score},
		{"composure", "Calm and composed on camera", "Visible nervousness on camera", "Record practice answers until being on camera feels routine", report.Scores.Components[scoring.ComponentEmotion].Score},
		{"filler words", "Clean answers with few filler words", "Frequent filler words", "Pause silently instead of saying um or uh", report.Scores.Components[scoring.ComponentFiller].Score},
	}
	for _, c := range components {
		if c.score >= 70 {
			fb.Strengths = append(fb.Strengths, c.strong)
		} else {
			fb.AreasForImprovement = append(fb.AreasForImprovement, c.weak)
			fb.ActionPlan = append(fb.ActionPlan, c.action)
		}
	}
	if len(fb.Strengths) == 0 {
		fb.Strengths = []string{"Completed the interview session"}
	}
	if len(fb.AreasForImprovement) == 0 {
		fb.AreasForImprovement = []string{"Keep practicing to maintain consistency"}
	}
	if len(fb.ActionPlan) == 0 {
		fb.ActionPlan = []string{"Record another session to confirm the results hold"}
	}
	return fb
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
