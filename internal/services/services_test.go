package services

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramandeep-singh77/IntervueAi/internal/analysis/speech"
	"github.com/ramandeep-singh77/IntervueAi/internal/analysis/vision"
	"github.com/ramandeep-singh77/IntervueAi/internal/models"
	"github.com/ramandeep-singh77/IntervueAi/internal/providers/stt"
	"github.com/ramandeep-singh77/IntervueAi/internal/questions"
	"github.com/ramandeep-singh77/IntervueAi/internal/scoring"
	"github.com/ramandeep-singh77/IntervueAi/internal/utils"
)

// memSessionRepo is an in-memory stand-in for the mongo session repository.
type memSessionRepo struct {
	sessions map[string]*models.InterviewSession
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: map[string]*models.InterviewSession{}}
}

func (r *memSessionRepo) Create(ctx context.Context, s *models.InterviewSession) error {
	cp := *s
	r.sessions[s.SessionID] = &cp
	return nil
}

func (r *memSessionRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *s
	cp.Answers = append([]models.AnswerMetrics(nil), s.Answers...)
	return &cp, nil
}

func (r *memSessionRepo) AppendAnswer(ctx context.Context, sessionID string, answer models.AnswerMetrics) error {
	s, ok := r.sessions[sessionID]
	if !ok {
		return utils.ErrNotFound
	}
	s.Answers = append(s.Answers, answer)
	return nil
}

func (r *memSessionRepo) AttachVisual(ctx context.Context, sessionID string, questionIndex int, visual *models.VisualMetrics, consistency, stress *float64, videoURL string) error {
	s, ok := r.sessions[sessionID]
	if !ok {
		return utils.ErrNotFound
	}
	pos := -1
	for i := range s.Answers {
		if s.Answers[i].QuestionIndex == questionIndex {
			pos = i
		}
	}
	if pos < 0 {
		return utils.ErrNotFound
	}
	s.Answers[pos].Visual = visual
	s.Answers[pos].EmotionConsistency = consistency
	s.Answers[pos].EmotionStress = stress
	if videoURL != "" {
		s.Answers[pos].VideoURL = videoURL
	}
	return nil
}

func (r *memSessionRepo) End(ctx context.Context, sessionID string, endedAt time.Time) error {
	s, ok := r.sessions[sessionID]
	if !ok {
		return utils.ErrNotFound
	}
	s.Status = models.StatusCompleted
	s.EndedAt = &endedAt
	return nil
}

func (r *memSessionRepo) SetStatus(ctx context.Context, sessionID, status string) error {
	s, ok := r.sessions[sessionID]
	if !ok {
		return utils.ErrNotFound
	}
	s.Status = status
	return nil
}

type fakeSTT struct {
	text string
}

func (f *fakeSTT) Transcribe(ctx context.Context, audio []byte, language string) (stt.Transcription, error) {
	words := strings.Fields(f.text)
	return stt.Transcription{Text: f.text, Words: words, WordCount: len(words), Confidence: 0.9}, nil
}

func (f *fakeSTT) Close() error { return nil }

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func newSessionService(repo *memSessionRepo) SessionService {
	return NewSessionService(repo, questions.NewGenerator(nil, testLog()))
}

// toneWAV builds a mono 16-bit WAV holding a steady tone.
func toneWAV(t *testing.T, freq float64, seconds float64) []byte {
	t.Helper()
	const rate = 16000
	n := int(seconds * rate)
	var data bytes.Buffer
	for i := 0; i < n; i++ {
		v := int16(0.5 * 32767 * math.Sin(2*math.Pi*freq*float64(i)/rate))
		require.NoError(t, binary.Write(&data, binary.LittleEndian, v))
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+data.Len()))
	buf.WriteString("WAVEfmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(rate))
	binary.Write(&buf, binary.LittleEndian, uint32(rate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(data.Len()))
	buf.Write(data.Bytes())
	return buf.Bytes()
}

func newAnalysis(repo *memSessionRepo, provider stt.Provider, detector vision.Detector) AnalysisService {
	va := vision.NewAnalyzer(detector)
	va.Stride = 1
	return NewAnalysisService(repo, nil, speech.NewAnalyzer(), va, provider, nil, nil, nil, testLog())
}

func startSession(t *testing.T, svc SessionService) *models.InterviewSession {
	t.Helper()
	session, err := svc.Start(context.Background(), "user-1", "Software Engineer", "Fresher", 3)
	require.NoError(t, err)
	return session
}

func TestSessionStartPopulatesQuestions(t *testing.T) {
	repo := newMemSessionRepo()
	session := startSession(t, newSessionService(repo))

	assert.NotEmpty(t, session.SessionID)
	assert.Equal(t, models.StatusActive, session.Status)
	assert.Len(t, session.Questions, 3)
	assert.WithinDuration(t, session.CreatedAt.Add(SessionTTL), session.ExpiresAt, time.Second)
}

func TestSessionStartRequiresUser(t *testing.T) {
	_, err := newSessionService(newMemSessionRepo()).Start(context.Background(), "", "HR", "Fresher", 3)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestSessionGetExpiresStaleSessions(t *testing.T) {
	repo := newMemSessionRepo()
	svc := newSessionService(repo)
	session := startSession(t, svc)

	repo.sessions[session.SessionID].ExpiresAt = time.Now().UTC().Add(-time.Minute)

	got, err := svc.Get(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, got.Status)
	assert.Equal(t, models.StatusExpired, repo.sessions[session.SessionID].Status)
}

func TestSessionEndIsIdempotent(t *testing.T) {
	svc := newSessionService(newMemSessionRepo())
	session := startSession(t, svc)

	first, err := svc.End(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, first.Status)

	second, err := svc.End(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, second.Status)
}

func TestSessionProgressCountsDistinctQuestions(t *testing.T) {
	repo := newMemSessionRepo()
	svc := newSessionService(repo)
	session := startSession(t, svc)

	require.NoError(t, repo.AppendAnswer(context.Background(), session.SessionID, models.AnswerMetrics{QuestionIndex: 0}))
	require.NoError(t, repo.AppendAnswer(context.Background(), session.SessionID, models.AnswerMetrics{QuestionIndex: 0}))
	require.NoError(t, repo.AppendAnswer(context.Background(), session.SessionID, models.AnswerMetrics{QuestionIndex: 2}))

	answered, total, err := svc.Progress(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, answered)
	assert.Equal(t, 3, total)
}

func TestAnalyzeAudioRecordsMetrics(t *testing.T) {
	repo := newMemSessionRepo()
	session := startSession(t, newSessionService(repo))
	svc := newAnalysis(repo, &fakeSTT{text: "um I built the billing service well"}, vision.NewSynthetic(nil))

	answer, err := svc.AnalyzeAudio(context.Background(), session.SessionID, "user-1", 0, toneWAV(t, 120, 2), "en-US")
	require.NoError(t, err)

	require.NotNil(t, answer.Voice)
	assert.False(t, answer.Voice.Degraded)
	assert.True(t, answer.Voice.HasSpeech)
	assert.Greater(t, answer.Voice.StabilityScore, 50.0)
	assert.Equal(t, 7, answer.WordCount)
	assert.Equal(t, []string{"um", "well"}, answer.FillerWords)
	assert.Greater(t, answer.SpeakingRateWPM, 0.0)

	stored, err := repo.GetBySessionID(context.Background(), session.SessionID)
	require.NoError(t, err)
	require.Len(t, stored.Answers, 1)
}

func TestAnalyzeAudioDegradedOnBadPayload(t *testing.T) {
	repo := newMemSessionRepo()
	session := startSession(t, newSessionService(repo))
	svc := newAnalysis(repo, nil, vision.NewSynthetic(nil))

	answer, err := svc.AnalyzeAudio(context.Background(), session.SessionID, "user-1", 0, []byte("not audio"), "en-US")
	require.NoError(t, err)

	require.NotNil(t, answer.Voice)
	assert.True(t, answer.Voice.Degraded)
	assert.Equal(t, speech.ReasonDecodeFailed, answer.Voice.DegradedReason)
	assert.Equal(t, 100.0, answer.FillerScore)

	stored, err := repo.GetBySessionID(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Len(t, stored.Answers, 1)
}

func TestAnalyzeAudioRejectsWrongUser(t *testing.T) {
	repo := newMemSessionRepo()
	session := startSession(t, newSessionService(repo))
	svc := newAnalysis(repo, nil, vision.NewSynthetic(nil))

	_, err := svc.AnalyzeAudio(context.Background(), session.SessionID, "intruder", 0, toneWAV(t, 120, 1), "")
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))
}

func TestAnalyzeAudioRejectsBadQuestionIndex(t *testing.T) {
	repo := newMemSessionRepo()
	session := startSession(t, newSessionService(repo))
	svc := newAnalysis(repo, nil, vision.NewSynthetic(nil))

	_, err := svc.AnalyzeAudio(context.Background(), session.SessionID, "user-1", 99, toneWAV(t, 120, 1), "")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestAnalyzeAudioRejectsInactiveSession(t *testing.T) {
	repo := newMemSessionRepo()
	ssvc := newSessionService(repo)
	session := startSession(t, ssvc)
	_, err := ssvc.End(context.Background(), session.SessionID)
	require.NoError(t, err)

	svc := newAnalysis(repo, nil, vision.NewSynthetic(nil))
	_, err = svc.AnalyzeAudio(context.Background(), session.SessionID, "user-1", 0, toneWAV(t, 120, 1), "")
	assert.True(t, utils.IsCode(err, utils.CodeConflict))
}

func TestAnalyzeVideoDegradedOnBadPayload(t *testing.T) {
	repo := newMemSessionRepo()
	session := startSession(t, newSessionService(repo))
	svc := newAnalysis(repo, nil, vision.NewSynthetic(nil))

	_, err := svc.AnalyzeAudio(context.Background(), session.SessionID, "user-1", 0, toneWAV(t, 120, 1), "")
	require.NoError(t, err)

	visual, err := svc.AnalyzeVideo(context.Background(), session.SessionID, "user-1", 0, []byte("not video"))
	require.NoError(t, err)
	assert.True(t, visual.Degraded)
	assert.Equal(t, vision.ReasonDecodeFailed, visual.DegradedReason)

	stored, err := repo.GetBySessionID(context.Background(), session.SessionID)
	require.NoError(t, err)
	require.NotNil(t, stored.Answers[0].Visual)
	assert.True(t, stored.Answers[0].Visual.Degraded)
}

func newReportService(repo *memSessionRepo) (ReportService, SessionService) {
	engine, _ := scoring.NewEngine(scoring.DefaultWeights())
	ssvc := newSessionService(repo)
	return NewReportService(ssvc, engine, nil, nil, testLog()), ssvc
}

func TestReportZeroAnswers(t *testing.T) {
	repo := newMemSessionRepo()
	rsvc, ssvc := newReportService(repo)
	session := startSession(t, ssvc)

	report, err := rsvc.Generate(context.Background(), session.SessionID)
	require.NoError(t, err)

	assert.Equal(t, "No Data", report.Scores.Interpretation)
	assert.Equal(t, 0.0, report.Scores.OverallScore)
	assert.Len(t, report.Questions, 3)
	for _, q := range report.Questions {
		assert.False(t, q.Answered)
	}
	assert.NotEmpty(t, report.Feedback.Overall)
}

func TestReportUsesLatestAnswerPerQuestion(t *testing.T) {
	repo := newMemSessionRepo()
	rsvc, ssvc := newReportService(repo)
	session := startSession(t, ssvc)

	old := models.AnswerMetrics{QuestionIndex: 0, FillerScore: 10,
		Voice: &models.VoiceMetrics{StabilityScore: 10, ClarityScore: 10}}
	newer := models.AnswerMetrics{QuestionIndex: 0, FillerScore: 90,
		Voice: &models.VoiceMetrics{StabilityScore: 90, ClarityScore: 90}}
	require.NoError(t, repo.AppendAnswer(context.Background(), session.SessionID, old))
	require.NoError(t, repo.AppendAnswer(context.Background(), session.SessionID, newer))

	report, err := rsvc.Generate(context.Background(), session.SessionID)
	require.NoError(t, err)

	assert.Equal(t, 90.0, report.Scores.Components[scoring.ComponentVoice].Score)
	assert.Equal(t, 90.0, report.Scores.Components[scoring.ComponentFiller].Score)
	assert.Equal(t, 1, report.Scores.AnswersScored)
}

func TestReportIsDeterministic(t *testing.T) {
	repo := newMemSessionRepo()
	rsvc, ssvc := newReportService(repo)
	session := startSession(t, ssvc)
	require.NoError(t, repo.AppendAnswer(context.Background(), session.SessionID, models.AnswerMetrics{
		QuestionIndex: 0, FillerScore: 80,
		Voice: &models.VoiceMetrics{StabilityScore: 75, ClarityScore: 60},
	}))

	first, err := rsvc.Generate(context.Background(), session.SessionID)
	require.NoError(t, err)
	second, err := rsvc.Generate(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, first.Scores, second.Scores)
}

func TestExportCSVShape(t *testing.T) {
	repo := newMemSessionRepo()
	rsvc, ssvc := newReportService(repo)
	session := startSession(t, ssvc)
	require.NoError(t, repo.AppendAnswer(context.Background(), session.SessionID, models.AnswerMetrics{
		QuestionIndex: 0, WordCount: 42, SpeakingRateWPM: 120,
		FillerWords: []string{"um", "uh"}, FillerScore: 80,
		Voice:  &models.VoiceMetrics{StabilityScore: 75.5},
		Visual: &models.VisualMetrics{FaceDetectionRate: 90, EyeContactRate: 60, Confidence: 70},
	}))

	out, err := NewExportService(rsvc).ExportCSV(context.Background(), session.SessionID)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 4) // header + 3 questions
	assert.Equal(t, strings.Join(csvHeader, ","), lines[0])
	assert.Contains(t, lines[1], ",42,120.0,2,75.5,90.0,60.0,70.0")
}

func TestExportJSONRoundTrips(t *testing.T) {
	repo := newMemSessionRepo()
	rsvc, ssvc := newReportService(repo)
	session := startSession(t, ssvc)

	out, err := NewExportService(rsvc).ExportJSON(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Contains(t, string(out), session.SessionID)
}

func TestReportAggregates(t *testing.T) {
	repo := newMemSessionRepo()
	rsvc, ssvc := newReportService(repo)
	session := startSession(t, ssvc)

	require.NoError(t, repo.AppendAnswer(context.Background(), session.SessionID, models.AnswerMetrics{
		QuestionIndex: 0, WordCount: 100, SpeakingRateWPM: 120,
		FillerWords: []string{"um", "uh"}, FillerScore: 90,
		Voice: &models.VoiceMetrics{
			DurationSeconds: 60, SpeechPercentage: 50,
			PitchMean: 180, EnergyMean: 0.04, StabilityScore: 80,
		},
		Visual: &models.VisualMetrics{FaceDetectionRate: 90},
	}))
	require.NoError(t, repo.AppendAnswer(context.Background(), session.SessionID, models.AnswerMetrics{
		QuestionIndex: 1, WordCount: 50, SpeakingRateWPM: 100,
		FillerWords: []string{"like"}, FillerScore: 90,
		Voice: &models.VoiceMetrics{
			DurationSeconds: 30, SpeechPercentage: 100,
			PitchMean: 220, EnergyMean: 0.02, StabilityScore: 60,
			Degraded: false,
		},
	}))
	// degraded voice is excluded from voice averages
	require.NoError(t, repo.AppendAnswer(context.Background(), session.SessionID, models.AnswerMetrics{
		QuestionIndex: 2, WordCount: 10,
		Voice: &models.VoiceMetrics{Degraded: true, DegradedReason: "decode_failed"},
	}))

	report, err := rsvc.Generate(context.Background(), session.SessionID)
	require.NoError(t, err)

	agg := report.Analytics
	assert.Equal(t, 160, agg.TotalWords)
	assert.Equal(t, 3, agg.TotalFillerWords)
	assert.InDelta(t, 110.0, agg.AvgSpeakingRateWPM, 0.01)
	assert.InDelta(t, 70.0, agg.AvgVoiceStability, 0.01)
	assert.InDelta(t, 200.0, agg.AvgPitch, 0.01)
	assert.InDelta(t, 0.03, agg.AvgEnergy, 0.01)
	assert.InDelta(t, 90.0, agg.AvgFaceDetection, 0.01)
	assert.InDelta(t, 60.0, agg.SpeechTimeSeconds, 0.01) // 60*0.5 + 30*1.0
}

func TestAnalyzeVideoBeforeAudioConflicts(t *testing.T) {
	repo := newMemSessionRepo()
	session := startSession(t, newSessionService(repo))
	svc := newAnalysis(repo, nil, vision.NewSynthetic(nil))

	_, err := svc.AnalyzeVideo(context.Background(), session.SessionID, "user-1", 0, []byte("not video"))
	assert.True(t, utils.IsCode(err, utils.CodeConflict))

	stored, err := repo.GetBySessionID(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Empty(t, stored.Answers)
}

func TestAnalyzeVideoAttachesToLatestAnswerOnly(t *testing.T) {
	repo := newMemSessionRepo()
	session := startSession(t, newSessionService(repo))
	svc := newAnalysis(repo, nil, vision.NewSynthetic(nil))

	_, err := svc.AnalyzeAudio(context.Background(), session.SessionID, "user-1", 0, toneWAV(t, 120, 1), "")
	require.NoError(t, err)
	_, err = svc.AnalyzeAudio(context.Background(), session.SessionID, "user-1", 0, toneWAV(t, 120, 1), "")
	require.NoError(t, err)

	_, err = svc.AnalyzeVideo(context.Background(), session.SessionID, "user-1", 0, []byte("not video"))
	require.NoError(t, err)

	stored, err := repo.GetBySessionID(context.Background(), session.SessionID)
	require.NoError(t, err)
	require.Len(t, stored.Answers, 2)
	assert.Nil(t, stored.Answers[0].Visual)
	require.NotNil(t, stored.Answers[1].Visual)
}

func TestAnalyzeAudioPersistsFillerColumn(t *testing.T) {
	repo := newMemSessionRepo()
	session := startSession(t, newSessionService(repo))
	answers := &memAnswerRepo{}

	va := vision.NewAnalyzer(vision.NewSynthetic(nil))
	va.Stride = 1
	svc := NewAnalysisService(repo, answers, speech.NewAnalyzer(), va,
		&fakeSTT{text: "um so I would um refactor it"}, nil, nil, nil, testLog())

	_, err := svc.AnalyzeAudio(context.Background(), session.SessionID, "user-1", 0, toneWAV(t, 120, 1), "")
	require.NoError(t, err)

	require.Len(t, answers.records, 1)
	rec := answers.records[0]
	assert.Equal(t, session.SessionID, rec.SessionID)
	assert.Equal(t, []string{"um", "so", "um"}, []string(rec.FillerWords))
	assert.NotEmpty(t, rec.Metrics)
}
