// Package flow provides the shared "at most once per key per window" gate.
package flow

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter throttles actions against the shared Redis store. All coordination
// lives in Redis, so the gate holds across every server instance without
// in-process locks.
type Limiter struct {
	rdb *redis.Client
}

// NewLimiter creates a limiter backed by the given Redis client
func NewLimiter(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

// LimitOnceCheck acquires the key for the given window. The check and the
// set are a single SETNX round trip: the first caller inside a window gets
// true, everyone else gets false until the key expires. The rejection path
// never mutates the store.
func (l *Limiter) LimitOnceCheck(ctx context.Context, key string, window time.Duration) (bool, error) {
	return l.rdb.SetNX(ctx, key, "", window).Result()
}
