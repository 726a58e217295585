package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session statuses.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusExpired   = "expired"
)

type InterviewSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"` // uuid v4
	UserID    string             `bson:"user_id" json:"user_id"`       // uuid from Supabase Auth

	Role            string `bson:"role" json:"role"`                         // ex: "Software Engineer"
	ExperienceLevel string `bson:"experience_level" json:"experience_level"` // Fresher|Experienced
	Status          string `bson:"status" json:"status"`                     // active|completed|expired

	Questions []Question      `bson:"questions" json:"questions"`
	Answers   []AnswerMetrics `bson:"answers" json:"answers"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	EndedAt   *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
	ExpiresAt time.Time  `bson:"expires_at" json:"expires_at"` // for TTL index
}

type Question struct {
	Index    int    `bson:"index" json:"index"`
	Text     string `bson:"text" json:"text"`
	Category string `bson:"category,omitempty" json:"category,omitempty"` // behavioral|technical|situational
}

// AnswerMetrics holds everything measured for one answered question.
// Modality blocks are pointers so an audio-only answer carries no visual
// block at all instead of a zeroed one.
type AnswerMetrics struct {
	QuestionIndex int `bson:"question_index" json:"question_index"`

	Transcript      string   `bson:"transcript,omitempty" json:"transcript,omitempty"`
	WordCount       int      `bson:"word_count" json:"word_count"`
	FillerWords     []string `bson:"filler_words,omitempty" json:"filler_words,omitempty"`
	FillerScore     float64  `bson:"filler_score" json:"filler_score"`
	SpeakingRateWPM float64  `bson:"speaking_rate_wpm,omitempty" json:"speaking_rate_wpm,omitempty"`

	Voice  *VoiceMetrics  `bson:"voice,omitempty" json:"voice,omitempty"`
	Visual *VisualMetrics `bson:"visual,omitempty" json:"visual,omitempty"`

	EmotionConsistency *float64 `bson:"emotion_consistency,omitempty" json:"emotion_consistency,omitempty"`
	EmotionStress      *float64 `bson:"emotion_stress,omitempty" json:"emotion_stress,omitempty"`

	AudioURL string `bson:"audio_url,omitempty" json:"audio_url,omitempty"`
	VideoURL string `bson:"video_url,omitempty" json:"video_url,omitempty"`

	RecordedAt time.Time `bson:"recorded_at" json:"recorded_at"`
}

type VoiceMetrics struct {
	DurationSeconds   float64 `bson:"duration_seconds" json:"duration_seconds"`
	SpeechPercentage  float64 `bson:"speech_percentage" json:"speech_percentage"`
	SilencePercentage float64 `bson:"silence_percentage" json:"silence_percentage"`
	PitchMean         float64 `bson:"pitch_mean" json:"pitch_mean"`
	PitchStd          float64 `bson:"pitch_std" json:"pitch_std"`
	EnergyMean        float64 `bson:"energy_mean" json:"energy_mean"`
	EnergyStd         float64 `bson:"energy_std" json:"energy_std"`
	StabilityScore    float64 `bson:"stability_score" json:"stability_score"`
	SNR               float64 `bson:"snr" json:"snr"`
	ClarityScore      float64 `bson:"clarity_score" json:"clarity_score"`
	HasSpeech         bool    `bson:"has_speech" json:"has_speech"`
	Degraded          bool    `bson:"degraded,omitempty" json:"degraded,omitempty"`
	DegradedReason    string  `bson:"degraded_reason,omitempty" json:"degraded_reason,omitempty"`
}

type VisualMetrics struct {
	FramesAnalyzed    int     `bson:"frames_analyzed" json:"frames_analyzed"`
	FaceDetectionRate float64 `bson:"face_detection_rate" json:"face_detection_rate"`
	EyeContactRate    float64 `bson:"eye_contact_rate" json:"eye_contact_rate"`
	PositionStability float64 `bson:"position_stability" json:"position_stability"`
	SizeConsistency   float64 `bson:"size_consistency" json:"size_consistency"`
	Confidence        float64 `bson:"confidence" json:"confidence"`
	Nervousness       float64 `bson:"nervousness" json:"nervousness"`
	HasFace           bool    `bson:"has_face" json:"has_face"`
	Degraded          bool    `bson:"degraded,omitempty" json:"degraded,omitempty"`
	DegradedReason    string  `bson:"degraded_reason,omitempty" json:"degraded_reason,omitempty"`
}
