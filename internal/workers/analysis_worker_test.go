package workers

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramandeep-singh77/IntervueAi/internal/models"
)

type recordingAnalysis struct {
	audioCalls int
	videoCalls int
	lastIndex  int
	lastLang   string
	payload    []byte
}

func (r *recordingAnalysis) AnalyzeAudio(ctx context.Context, sessionID, userID string, questionIndex int, audio []byte, language string) (*models.AnswerMetrics, error) {
	r.audioCalls++
	r.lastIndex = questionIndex
	r.lastLang = language
	r.payload = audio
	return &models.AnswerMetrics{QuestionIndex: questionIndex}, nil
}

func (r *recordingAnalysis) AnalyzeVideo(ctx context.Context, sessionID, userID string, questionIndex int, video []byte) (*models.VisualMetrics, error) {
	r.videoCalls++
	r.lastIndex = questionIndex
	r.payload = video
	return &models.VisualMetrics{}, nil
}

func newTestPool(t *testing.T) (*AnalysisWorkerPool, *recordingAnalysis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	rec := &recordingAnalysis{}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	pool := &AnalysisWorkerPool{
		Redis:    rdb,
		Analysis: rec,
		Logger:   log,
		Stream:   "analysis:stream",
		Group:    "analysis-workers",
	}
	return pool, rec, mr
}

func TestEnqueueWritesStreamEntry(t *testing.T) {
	pool, _, mr := newTestPool(t)
	ctx := context.Background()

	require.NoError(t, pool.Enqueue(ctx, "s1", "u1", 2, "audio", "en-US", []byte("bytes")))

	stream, err := mr.Stream("analysis:stream")
	require.NoError(t, err)
	require.Len(t, stream, 1)

	values := map[string]string{}
	for i := 0; i+1 < len(stream[0].Values); i += 2 {
		values[stream[0].Values[i]] = stream[0].Values[i+1]
	}
	assert.Equal(t, "s1", values["session_id"])
	assert.Equal(t, "audio", values["kind"])
	assert.Equal(t, "2", values["question_index"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("bytes")), values["payload_base64"])
}

func TestHandleMsgDispatchesAudio(t *testing.T) {
	pool, rec, _ := newTestPool(t)

	pool.handleMsg(context.Background(), redis.XMessage{
		ID: "1-0",
		Values: map[string]interface{}{
			"session_id":     "s1",
			"user_id":        "u1",
			"question_index": "3",
			"kind":           "audio",
			"language":       "en-US",
			"payload_base64": base64.StdEncoding.EncodeToString([]byte("pcm")),
		},
	})

	assert.Equal(t, 1, rec.audioCalls)
	assert.Equal(t, 0, rec.videoCalls)
	assert.Equal(t, 3, rec.lastIndex)
	assert.Equal(t, "en-US", rec.lastLang)
	assert.Equal(t, []byte("pcm"), rec.payload)
}

func TestHandleMsgDispatchesVideo(t *testing.T) {
	pool, rec, _ := newTestPool(t)

	pool.handleMsg(context.Background(), redis.XMessage{
		ID: "1-0",
		Values: map[string]interface{}{
			"session_id":     "s1",
			"user_id":        "u1",
			"question_index": "0",
			"kind":           "video",
			"payload_base64": "data:video/x-motion-jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("mjpeg")),
		},
	})

	assert.Equal(t, 1, rec.videoCalls)
	assert.Equal(t, []byte("mjpeg"), rec.payload)
}

func TestHandleMsgIgnoresIncomplete(t *testing.T) {
	pool, rec, _ := newTestPool(t)

	pool.handleMsg(context.Background(), redis.XMessage{
		ID:     "1-0",
		Values: map[string]interface{}{"kind": "audio"},
	})
	pool.handleMsg(context.Background(), redis.XMessage{
		ID: "1-1",
		Values: map[string]interface{}{
			"session_id": "s1", "user_id": "u1", "kind": "audio",
			"payload_base64": "%%% not base64 %%%",
		},
	})

	assert.Equal(t, 0, rec.audioCalls)
	assert.Equal(t, 0, rec.videoCalls)
}

func TestStatusChannelName(t *testing.T) {
	assert.Equal(t, "interview:s9:status", StatusChannel("s9"))
}
