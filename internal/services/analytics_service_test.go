package services

import (
	"context"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramandeep-singh77/IntervueAi/internal/models"
	"github.com/ramandeep-singh77/IntervueAi/internal/utils"
)

type memAnswerRepo struct {
	records []models.AnswerRecord
}

func (r *memAnswerRepo) Insert(ctx context.Context, rec *models.AnswerRecord) error {
	r.records = append(r.records, *rec)
	return nil
}

func (r *memAnswerRepo) ListBySession(ctx context.Context, userID, sessionID string) ([]models.AnswerRecord, error) {
	var out []models.AnswerRecord
	for _, rec := range r.records {
		if rec.UserID == userID && rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memAnswerRepo) LatestN(ctx context.Context, userID string, n int) ([]models.AnswerRecord, error) {
	var out []models.AnswerRecord
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (r *memAnswerRepo) GetByID(ctx context.Context, id string) (*models.AnswerRecord, error) {
	for i := range r.records {
		if r.records[i].ID == id {
			return &r.records[i], nil
		}
	}
	return nil, utils.ErrNotFound
}

// SimilarAnswers returns the user's records in stored order; distance
// ordering is the database's job, not this fake's.
func (r *memAnswerRepo) SimilarAnswers(ctx context.Context, userID string, vec pgvector.Vector, limit int) ([]models.AnswerRecord, error) {
	out, _ := r.LatestN(ctx, userID, limit)
	return out, nil
}

func seedAnswerRepo() *memAnswerRepo {
	return &memAnswerRepo{records: []models.AnswerRecord{
		{ID: "a1", UserID: "user-1", SessionID: "s1", FeatureVec: pgvector.NewVector(make([]float32, 8))},
		{ID: "a2", UserID: "user-1", SessionID: "s1"},
		{ID: "a3", UserID: "user-1", SessionID: "s2"},
		{ID: "b1", UserID: "user-2", SessionID: "s9"},
	}}
}

func TestAnalyticsRecentScopedToUser(t *testing.T) {
	svc := NewAnalyticsService(seedAnswerRepo())

	rows, err := svc.Recent(context.Background(), "user-1", 10)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = svc.Recent(context.Background(), "", 10)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestAnalyticsSessionAnswers(t *testing.T) {
	svc := NewAnalyticsService(seedAnswerRepo())

	rows, err := svc.SessionAnswers(context.Background(), "user-1", "s1")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestAnalyticsSimilarExcludesSelf(t *testing.T) {
	svc := NewAnalyticsService(seedAnswerRepo())

	rows, err := svc.Similar(context.Background(), "user-1", "a1", 5)
	require.NoError(t, err)
	for _, r := range rows {
		assert.NotEqual(t, "a1", r.ID)
	}
	assert.Len(t, rows, 2)
}

func TestAnalyticsSimilarForbiddenForOtherUser(t *testing.T) {
	svc := NewAnalyticsService(seedAnswerRepo())

	_, err := svc.Similar(context.Background(), "user-1", "b1", 5)
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))
}

func TestAnalyticsSimilarUnknownAnswer(t *testing.T) {
	svc := NewAnalyticsService(seedAnswerRepo())

	_, err := svc.Similar(context.Background(), "user-1", "nope", 5)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}
