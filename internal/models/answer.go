package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// AnswerRecord is the relational copy of an analyzed answer, kept for
// cross-session analytics and similarity lookups.
type AnswerRecord struct {
	ID            string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID        string `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	SessionID     string `gorm:"column:session_id;type:uuid;index" json:"session_id"`
	QuestionIndex int    `gorm:"column:question_index;type:integer" json:"question_index"`

	Role            string `gorm:"column:role;type:text" json:"role"`
	ExperienceLevel string `gorm:"column:experience_level;type:text" json:"experience_level"`

	Transcript string `gorm:"column:transcript;type:text" json:"transcript"`
	WordCount  int    `gorm:"column:word_count;type:integer" json:"word_count"`

	// Detected fillers as their own column so analytics can query them
	// without unpacking the metrics blob
	FillerWords pq.StringArray `gorm:"column:filler_words;type:text[]" json:"filler_words"`

	// Full per-modality metrics as raw JSON (shape matches AnswerMetrics)
	Metrics datatypes.JSON `gorm:"column:metrics;type:jsonb" json:"metrics"`

	// Compact behavioral signature for nearest-neighbor lookups
	FeatureVec pgvector.Vector `gorm:"column:feature_vec;type:vector(8)" json:"feature_vec"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
}

func (AnswerRecord) TableName() string { return "answer_records" }
