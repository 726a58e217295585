package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/ramandeep-singh77/IntervueAi/internal/analysis/speech"
	"github.com/ramandeep-singh77/IntervueAi/internal/analysis/transcript"
	"github.com/ramandeep-singh77/IntervueAi/internal/analysis/vision"
	"github.com/ramandeep-singh77/IntervueAi/internal/cache"
	"github.com/ramandeep-singh77/IntervueAi/internal/media"
	"github.com/ramandeep-singh77/IntervueAi/internal/models"
	"github.com/ramandeep-singh77/IntervueAi/internal/providers/emotion"
	"github.com/ramandeep-singh77/IntervueAi/internal/providers/stt"
	mongorepo "github.com/ramandeep-singh77/IntervueAi/internal/repositories/mongo"
	"github.com/ramandeep-singh77/IntervueAi/internal/repositories/postgres"
	"github.com/ramandeep-singh77/IntervueAi/internal/storage"
	"github.com/ramandeep-singh77/IntervueAi/internal/utils"
)

const emotionFrameSamples = 5

type AnalysisService interface {
	AnalyzeAudio(ctx context.Context, sessionID, userID string, questionIndex int, audio []byte, language string) (*models.AnswerMetrics, error)
	AnalyzeVideo(ctx context.Context, sessionID, userID string, questionIndex int, video []byte) (*models.VisualMetrics, error)
}

type analysisService struct {
	sessions mongorepo.SessionRepository
	answers  postgres.AnswerRepo // nil when postgres is not configured
	speech   *speech.Analyzer
	vision   *vision.Analyzer
	stt      stt.Provider     // nil means transcript-less audio analysis
	emotion  emotion.Provider // never nil, Disabled when unconfigured
	uploader storage.Uploader // nil disables recording retention
	cache    cache.Cache      // nil disables report caching
	fillers  map[string]struct{}
	log      *logrus.Entry
}

func NewAnalysisService(
	sessions mongorepo.SessionRepository,
	answers postgres.AnswerRepo,
	speechAnalyzer *speech.Analyzer,
	visionAnalyzer *vision.Analyzer,
	sttProvider stt.Provider,
	emotionProvider emotion.Provider,
	uploader storage.Uploader,
	c cache.Cache,
	log *logrus.Entry,
) AnalysisService {
	if emotionProvider == nil {
		emotionProvider = emotion.Disabled{}
	}
	return &analysisService{
		sessions: sessions,
		answers:  answers,
		speech:   speechAnalyzer,
		vision:   visionAnalyzer,
		stt:      sttProvider,
		emotion:  emotionProvider,
		uploader: uploader,
		cache:    c,
		fillers:  transcript.DefaultFillers(),
		log:      log,
	}
}

// AnalyzeAudio runs voice analysis and transcription on an answer
// recording and appends the result to the session. An undecodable upload
// still produces an answer entry, marked degraded, so the question counts
// as attempted.
func (s *analysisService) AnalyzeAudio(ctx context.Context, sessionID, userID string, questionIndex int, audio []byte, language string) (*models.AnswerMetrics, error) {
	const op = "AnalysisService.AnalyzeAudio"

	session, err := s.activeSession(ctx, op, sessionID, userID, questionIndex)
	if err != nil {
		return nil, err
	}

	answer := models.AnswerMetrics{
		QuestionIndex: questionIndex,
		RecordedAt:    time.Now().UTC(),
	}

	pcm, decErr := media.DecodeAudio(audio)
	if decErr != nil {
		s.log.WithError(decErr).WithField("session_id", sessionID).Warn("audio decode failed, recording degraded answer")
		answer.Voice = voiceFromResult(speech.DegradedResult(speech.ReasonDecodeFailed))
		answer.FillerScore = transcript.Score(nil, s.fillers)
	} else {
		var (
			result speech.Result
			tr     stt.Transcription
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			result = s.speech.Analyze(pcm.Samples, pcm.SampleRate)
			return nil
		})
		if s.stt != nil {
			g.Go(func() error {
				linear := media.EncodeLINEAR16(media.Resample(pcm, 16000))
				out, terr := s.stt.Transcribe(gctx, linear, language)
				if terr != nil {
					// transcription is best-effort, voice metrics still stand
					s.log.WithError(terr).WithField("session_id", sessionID).Warn("transcription failed")
					return nil
				}
				tr = out
				return nil
			})
		}
		_ = g.Wait()

		answer.Voice = voiceFromResult(result)
		answer.Transcript = tr.Text
		answer.WordCount = tr.WordCount
		answer.FillerWords = transcript.Detect(tr.Words, s.fillers)
		answer.FillerScore = transcript.Score(tr.Words, s.fillers)
		if result.Duration > 0 && tr.WordCount > 0 {
			answer.SpeakingRateWPM = float64(tr.WordCount) / (result.Duration / 60)
		}
	}

	answer.AudioURL = s.store(ctx, sessionID, questionIndex, "audio", "audio/wav", audio)

	if err := s.sessions.AppendAnswer(ctx, sessionID, answer); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to record answer", err)
	}
	s.persistRecord(ctx, session, answer)
	s.invalidateReport(ctx, sessionID)
	return &answer, nil
}

// AnalyzeVideo attaches visual presence metrics to the latest answer for
// the question. Audio must have been uploaded first; the visual block
// hangs off the answer the audio created.
func (s *analysisService) AnalyzeVideo(ctx context.Context, sessionID, userID string, questionIndex int, video []byte) (*models.VisualMetrics, error) {
	const op = "AnalysisService.AnalyzeVideo"

	if _, err := s.activeSession(ctx, op, sessionID, userID, questionIndex); err != nil {
		return nil, err
	}

	var result vision.Result
	src, decErr := media.NewMJPEGSource(video)
	if decErr != nil {
		s.log.WithError(decErr).WithField("session_id", sessionID).Warn("video decode failed, recording degraded metrics")
		result = vision.DegradedResult(vision.ReasonDecodeFailed)
	} else {
		result = s.vision.Analyze(src)
	}

	visual := visualFromResult(result)

	var consistency, stress *float64
	if !result.Degraded {
		scores, ok, err := s.emotion.Detect(ctx, media.SampleJPEGFrames(video, emotionFrameSamples))
		if err != nil {
			s.log.WithError(err).WithField("session_id", sessionID).Warn("emotion detection failed")
		} else if ok {
			consistency, stress = &scores.Consistency, &scores.Stress
		}
	}

	videoURL := s.store(ctx, sessionID, questionIndex, "video", "video/x-motion-jpeg", video)

	err := s.sessions.AttachVisual(ctx, sessionID, questionIndex, visual, consistency, stress, videoURL)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeConflict, op, "no answer recorded for this question yet, upload audio first", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to attach visual metrics", err)
	}
	s.invalidateReport(ctx, sessionID)
	return visual, nil
}

func (s *analysisService) activeSession(ctx context.Context, op, sessionID, userID string, questionIndex int) (*models.InterviewSession, error) {
	session, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
	}
	if session.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "session belongs to another user", nil)
	}
	if session.Status != models.StatusActive {
		return nil, utils.E(utils.CodeConflict, op, "session is not active", nil)
	}
	if questionIndex < 0 || questionIndex >= len(session.Questions) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "question_index out of range", nil)
	}
	return session, nil
}

// store uploads the raw recording, best-effort. Analysis results are never
// blocked on retention.
func (s *analysisService) store(ctx context.Context, sessionID string, questionIndex int, kind, contentType string, data []byte) string {
	if s.uploader == nil {
		return ""
	}
	object := fmt.Sprintf("sessions/%s/q%d/%s", sessionID, questionIndex, kind)
	url, err := s.uploader.Upload(ctx, object, contentType, bytes.NewReader(data))
	if err != nil {
		s.log.WithError(err).WithField("object", object).Warn("recording upload failed")
		return ""
	}
	return url
}

func (s *analysisService) persistRecord(ctx context.Context, session *models.InterviewSession, answer models.AnswerMetrics) {
	if s.answers == nil {
		return
	}

	metrics, err := json.Marshal(answer)
	if err != nil {
		s.log.WithError(err).Warn("answer metrics marshal failed")
		return
	}
	rec := &models.AnswerRecord{
		ID:              uuid.NewString(),
		UserID:          session.UserID,
		SessionID:       session.SessionID,
		QuestionIndex:   answer.QuestionIndex,
		Role:            session.Role,
		ExperienceLevel: session.ExperienceLevel,
		Transcript:      answer.Transcript,
		WordCount:       answer.WordCount,
		FillerWords:     pq.StringArray(answer.FillerWords),
		Metrics:         datatypes.JSON(metrics),
		FeatureVec:      featureVector(answer),
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.answers.Insert(ctx, rec); err != nil {
		s.log.WithError(err).WithField("session_id", session.SessionID).Warn("answer record insert failed")
	}
}

func (s *analysisService) invalidateReport(ctx context.Context, sessionID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cache.ReportKey(sessionID)); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("report cache invalidation failed")
	}
}

// featureVector packs the answer's behavioral signature for similarity
// lookups. Dimensions are normalized to roughly [0,1].
func featureVector(a models.AnswerMetrics) pgvector.Vector {
	v := make([]float32, 8)
	if a.Voice != nil {
		v[0] = float32(a.Voice.StabilityScore / 100)
		v[1] = float32(a.Voice.ClarityScore / 100)
		v[2] = float32(a.Voice.SpeechPercentage / 100)
	}
	v[3] = float32(a.FillerScore / 100)
	v[4] = float32(a.SpeakingRateWPM / 200)
	if a.Visual != nil {
		v[5] = float32(a.Visual.EyeContactRate / 100)
		v[6] = float32(a.Visual.Confidence / 100)
		v[7] = float32(a.Visual.Nervousness / 100)
	}
	return pgvector.NewVector(v)
}

func voiceFromResult(r speech.Result) *models.VoiceMetrics {
	return &models.VoiceMetrics{
		DurationSeconds:   r.Duration,
		SpeechPercentage:  r.Activity.SpeechPercentage,
		SilencePercentage: r.Activity.SilencePercentage,
		PitchMean:         r.Prosody.PitchMean,
		PitchStd:          r.Prosody.PitchStd,
		EnergyMean:        r.Prosody.EnergyMean,
		EnergyStd:         r.Prosody.EnergyStd,
		StabilityScore:    r.Prosody.StabilityScore,
		SNR:               r.Quality.SNR,
		ClarityScore:      r.Quality.QualityScore,
		HasSpeech:         r.HasSpeech,
		Degraded:          r.Degraded,
		DegradedReason:    r.Reason,
	}
}

func visualFromResult(r vision.Result) *models.VisualMetrics {
	return &models.VisualMetrics{
		FramesAnalyzed:    r.FramesAnalyzed,
		FaceDetectionRate: r.FaceDetectionRate,
		EyeContactRate:    r.EyeContactRate,
		PositionStability: r.PositionStability,
		SizeConsistency:   r.SizeConsistency,
		Confidence:        r.Confidence,
		Nervousness:       r.Nervousness,
		HasFace:           r.HasFace,
		Degraded:          r.Degraded,
		DegradedReason:    r.Reason,
	}
}
