package services

import (
	"context"
	"errors"

	"github.com/ramandeep-singh77/IntervueAi/internal/models"
	"github.com/ramandeep-singh77/IntervueAi/internal/repositories/postgres"
	"github.com/ramandeep-singh77/IntervueAi/internal/utils"
)

// AnalyticsService answers cross-session questions about a user's practice
// history from the relational answer records.
type AnalyticsService interface {
	Recent(ctx context.Context, userID string, limit int) ([]models.AnswerRecord, error)
	SessionAnswers(ctx context.Context, userID, sessionID string) ([]models.AnswerRecord, error)
	Similar(ctx context.Context, userID, answerID string, limit int) ([]models.AnswerRecord, error)
}

type analyticsService struct {
	answers postgres.AnswerRepo
}

func NewAnalyticsService(answers postgres.AnswerRepo) AnalyticsService {
	return &analyticsService{answers: answers}
}

func (s *analyticsService) Recent(ctx context.Context, userID string, limit int) ([]models.AnswerRecord, error) {
	const op = "AnalyticsService.Recent"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	rows, err := s.answers.LatestN(ctx, userID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list answers", err)
	}
	return rows, nil
}

func (s *analyticsService) SessionAnswers(ctx context.Context, userID, sessionID string) ([]models.AnswerRecord, error) {
	const op = "AnalyticsService.SessionAnswers"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	rows, err := s.answers.ListBySession(ctx, userID, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list answers", err)
	}
	return rows, nil
}

// Similar finds the user's past answers with the closest behavioral
// signature to the given one.
func (s *analyticsService) Similar(ctx context.Context, userID, answerID string, limit int) ([]models.AnswerRecord, error) {
	const op = "AnalyticsService.Similar"

	rec, err := s.answers.GetByID(ctx, answerID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "answer not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load answer", err)
	}
	if rec.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "answer belongs to another user", nil)
	}

	rows, err := s.answers.SimilarAnswers(ctx, userID, rec.FeatureVec, limit+1)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "similarity query failed", err)
	}

	// the queried answer is its own nearest neighbor, drop it
	out := rows[:0]
	for _, r := range rows {
		if r.ID != rec.ID {
			out = append(out, r)
		}
	}
	if len(out) > limit && limit > 0 {
		out = out[:limit]
	}
	return out, nil
}
