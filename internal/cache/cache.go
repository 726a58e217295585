package cache

import (
	"context"
	"time"
)

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Key builders for the report cache. Reports are invalidated whenever a new
// answer lands on the session.
func ReportKey(sessionID string) string  { return "report:" + sessionID }
func SessionKey(sessionID string) string { return "session:" + sessionID }
