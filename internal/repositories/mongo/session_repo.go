package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ramandeep-singh77/IntervueAi/internal/models"
	"github.com/ramandeep-singh77/IntervueAi/internal/utils"
)

type SessionRepository interface {
	Create(ctx context.Context, s *models.InterviewSession) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.InterviewSession, error)
	AppendAnswer(ctx context.Context, sessionID string, answer models.AnswerMetrics) error
	AttachVisual(ctx context.Context, sessionID string, questionIndex int, visual *models.VisualMetrics, consistency, stress *float64, videoURL string) error
	End(ctx context.Context, sessionID string, endedAt time.Time) error
	SetStatus(ctx context.Context, sessionID, status string) error
}

type sessionRepo struct {
	col *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepository {
	return &sessionRepo{col: db.Collection("interview_sessions")}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.InterviewSession) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.Answers == nil {
		s.Answers = []models.AnswerMetrics{}
	}
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *sessionRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	var s models.InterviewSession
	err := r.col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

// AppendAnswer is append-only: answers are never replaced in place, so a
// re-upload for the same question adds a new entry rather than rewriting
// history.
func (r *sessionRepo) AppendAnswer(ctx context.Context, sessionID string, answer models.AnswerMetrics) error {
	if answer.RecordedAt.IsZero() {
		answer.RecordedAt = time.Now().UTC()
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$push": bson.M{"answers": answer}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// AttachVisual adds video-derived metrics to the latest answer for a
// question, used when the video upload lands after the audio one. Only
// the newest entry for the question is touched; earlier entries keep
// whatever visual block they already carry. Returns ErrNotFound when no
// answer for the question exists yet.
func (r *sessionRepo) AttachVisual(ctx context.Context, sessionID string, questionIndex int, visual *models.VisualMetrics, consistency, stress *float64, videoURL string) error {
	session, err := r.GetBySessionID(ctx, sessionID)
	if err != nil {
		return err
	}
	pos := -1
	for i := range session.Answers {
		if session.Answers[i].QuestionIndex == questionIndex {
			pos = i
		}
	}
	if pos < 0 {
		return utils.ErrNotFound
	}

	field := func(name string) string {
		return fmt.Sprintf("answers.%d.%s", pos, name)
	}
	set := bson.M{field("visual"): visual}
	if consistency != nil {
		set[field("emotion_consistency")] = *consistency
	}
	if stress != nil {
		set[field("emotion_stress")] = *stress
	}
	if videoURL != "" {
		set[field("video_url")] = videoURL
	}

	// the answers array is append-only, so position pos is stable; the
	// filter re-checks the question index in case the document was
	// replaced between the read and the write
	res, err := r.col.UpdateOne(ctx,
		bson.M{
			"session_id":             sessionID,
			field("question_index"): questionIndex,
		},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *sessionRepo) End(ctx context.Context, sessionID string, endedAt time.Time) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{
			"status":   models.StatusCompleted,
			"ended_at": endedAt.UTC(),
		}},
	)
	return err
}

func (r *sessionRepo) SetStatus(ctx context.Context, sessionID, status string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{"status": status}},
	)
	return err
}
