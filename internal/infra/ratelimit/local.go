// Package ratelimit holds the in-process limiter used when Redis is not configured.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"autos-admin/internal/domain/ports/adapter"
)

var _ adapter.RateLimiter = (*Local)(nil)

// Local keeps one token bucket per key: limit tokens refilled over window.
type Local struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

func NewLocal() *Local {
	return &Local{buckets: map[string]*rate.Limiter{}}
}

func (l *Local) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return true, nil
	}
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
		l.buckets[key] = b
	}
	l.mu.Unlock()
	return b.Allow(), nil
}
