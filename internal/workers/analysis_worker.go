package workers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ramandeep-singh77/IntervueAi/internal/services"
)

// AnalysisWorkerPool consumes queued answer uploads from a redis stream and
// runs the analysis pipeline on them, publishing progress on the session's
// status channel so connected websockets can follow along.
type AnalysisWorkerPool struct {
	Redis      *redis.Client
	Analysis   services.AnalysisService
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

// StatusChannel is the pub/sub channel carrying per-session progress events.
func StatusChannel(sessionID string) string {
	return "interview:" + sessionID + ":status"
}

func (p *AnalysisWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Analysis == nil {
		return errors.New("AnalysisWorkerPool missing dependency: Redis/Analysis must be set")
	}
	if p.Stream == "" {
		p.Stream = "analysis:stream"
	}
	if p.Group == "" {
		p.Group = "analysis-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 3
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

// Enqueue queues an answer upload for asynchronous analysis. kind is
// "audio" or "video".
func (p *AnalysisWorkerPool) Enqueue(ctx context.Context, sessionID, userID string, questionIndex int, kind, language string, payload []byte) error {
	return p.Redis.XAdd(ctx, &redis.XAddArgs{
		Stream: p.Stream,
		Values: map[string]any{
			"session_id":     sessionID,
			"user_id":        userID,
			"question_index": strconv.Itoa(questionIndex),
			"kind":           kind,
			"language":       language,
			"payload_base64": base64.StdEncoding.EncodeToString(payload),
		},
	}).Err()
}

func (p *AnalysisWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *AnalysisWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	sessionID := getStr("session_id")
	userID := getStr("user_id")
	kind := getStr("kind")
	questionIndex, _ := strconv.Atoi(getStr("question_index"))
	if sessionID == "" || userID == "" || kind == "" {
		return
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":       msg.ID,
		"session_id":     sessionID,
		"question_index": questionIndex,
		"kind":           kind,
	})

	raw := getStr("payload_base64")
	if i := strings.Index(raw, ","); i >= 0 {
		raw = raw[i+1:] // strip data:...;base64,
	}
	payload, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(payload) == 0 {
		log.WithError(err).Warn("payload decode failed")
		p.publishStatus(ctx, sessionID, questionIndex, kind, "failed", "invalid payload")
		return
	}

	p.publishStatus(ctx, sessionID, questionIndex, kind, "processing", "analysis started")

	switch kind {
	case "audio":
		_, err = p.Analysis.AnalyzeAudio(ctx, sessionID, userID, questionIndex, payload, getStr("language"))
	case "video":
		_, err = p.Analysis.AnalyzeVideo(ctx, sessionID, userID, questionIndex, payload)
	default:
		log.Warn("unknown upload kind")
		return
	}
	if err != nil {
		log.WithError(err).Error("analysis failed")
		p.publishStatus(ctx, sessionID, questionIndex, kind, "failed", "analysis failed")
		return
	}
	p.publishStatus(ctx, sessionID, questionIndex, kind, "done", "analysis complete")
}

func (p *AnalysisWorkerPool) publishStatus(ctx context.Context, sessionID string, questionIndex int, kind, status, message string) {
	payload, _ := json.Marshal(map[string]any{
		"type":           "status",
		"status":         status,
		"kind":           kind,
		"question_index": questionIndex,
		"message":        message,
	})
	_ = p.Redis.Publish(ctx, StatusChannel(sessionID), string(payload)).Err()
}
