package postgres

import (
	"context"
	"errors"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ramandeep-singh77/IntervueAi/internal/models"
	"github.com/ramandeep-singh77/IntervueAi/internal/utils"
)

type AnswerRepo interface {
	Insert(ctx context.Context, rec *models.AnswerRecord) error
	ListBySession(ctx context.Context, userID, sessionID string) ([]models.AnswerRecord, error)
	LatestN(ctx context.Context, userID string, n int) ([]models.AnswerRecord, error)
	GetByID(ctx context.Context, id string) (*models.AnswerRecord, error)
	SimilarAnswers(ctx context.Context, userID string, vec pgvector.Vector, limit int) ([]models.AnswerRecord, error)
}

type answerRepo struct {
	db *gorm.DB
}

func NewAnswerRepo(db *gorm.DB) AnswerRepo {
	return &answerRepo{db: db}
}

func (r *answerRepo) Insert(ctx context.Context, rec *models.AnswerRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *answerRepo) ListBySession(ctx context.Context, userID, sessionID string) ([]models.AnswerRecord, error) {
	var rows []models.AnswerRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("question_index ASC, created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *answerRepo) LatestN(ctx context.Context, userID string, n int) ([]models.AnswerRecord, error) {
	if n <= 0 {
		n = 20
	}
	var rows []models.AnswerRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(n).
		Find(&rows).Error
	return rows, err
}

func (r *answerRepo) GetByID(ctx context.Context, id string) (*models.AnswerRecord, error) {
	var row models.AnswerRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

// SimilarAnswers ranks the user's past answers by L2 distance between
// behavioral feature vectors.
func (r *answerRepo) SimilarAnswers(ctx context.Context, userID string, vec pgvector.Vector, limit int) ([]models.AnswerRecord, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []models.AnswerRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "feature_vec <-> ?", Vars: []interface{}{vec}},
		}).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
