package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ramandeep-singh77/IntervueAi/internal/models"
	"github.com/ramandeep-singh77/IntervueAi/internal/questions"
	mongorepo "github.com/ramandeep-singh77/IntervueAi/internal/repositories/mongo"
	"github.com/ramandeep-singh77/IntervueAi/internal/utils"
)

// SessionTTL bounds how long an interview may stay open before it is
// treated as abandoned.
const SessionTTL = 2 * time.Hour

type SessionService interface {
	Start(ctx context.Context, userID, role, level string, numQuestions int) (*models.InterviewSession, error)
	Get(ctx context.Context, sessionID string) (*models.InterviewSession, error)
	End(ctx context.Context, sessionID string) (*models.InterviewSession, error)
	Progress(ctx context.Context, sessionID string) (answered, total int, err error)
}

type sessionService struct {
	sessions  mongorepo.SessionRepository
	generator *questions.Generator
}

func NewSessionService(sessions mongorepo.SessionRepository, generator *questions.Generator) SessionService {
	return &sessionService{sessions: sessions, generator: generator}
}

func (s *sessionService) Start(ctx context.Context, userID, role, level string, numQuestions int) (*models.InterviewSession, error) {
	const op = "SessionService.Start"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	role, level = questions.Normalize(role, level)

	now := time.Now().UTC()
	session := &models.InterviewSession{
		SessionID:       uuid.NewString(),
		UserID:          userID,
		Role:            role,
		ExperienceLevel: level,
		Status:          models.StatusActive,
		Questions:       s.generator.Generate(ctx, role, level, numQuestions),
		Answers:         []models.AnswerMetrics{},
		CreatedAt:       now,
		ExpiresAt:       now.Add(SessionTTL),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}
	return session, nil
}

// Get returns the session, flipping it to expired first when its TTL has
// passed so callers never see a stale "active".
func (s *sessionService) Get(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	const op = "SessionService.Get"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}

	out, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get session", err)
	}

	if out.Status == models.StatusActive && time.Now().UTC().After(out.ExpiresAt) {
		if err := s.sessions.SetStatus(ctx, sessionID, models.StatusExpired); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to expire session", err)
		}
		out.Status = models.StatusExpired
	}
	return out, nil
}

func (s *sessionService) End(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	const op = "SessionService.End"

	ss, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if ss.Status != models.StatusActive {
		return ss, nil
	}

	now := time.Now().UTC()
	if err := s.sessions.End(ctx, sessionID, now); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to end session", err)
	}
	ss.Status = models.StatusCompleted
	ss.EndedAt = &now
	return ss, nil
}

// Progress counts distinct answered questions, since answers are
// append-only and a question may carry several entries.
func (s *sessionService) Progress(ctx context.Context, sessionID string) (int, int, error) {
	ss, err := s.Get(ctx, sessionID)
	if err != nil {
		return 0, 0, err
	}

	answered := map[int]bool{}
	for _, a := range ss.Answers {
		answered[a.QuestionIndex] = true
	}
	return len(answered), len(ss.Questions), nil
}
