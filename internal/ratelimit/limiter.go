// Package ratelimit provides a token-bucket limiter keyed by an arbitrary
// string (here actor+endpoint). The Redis implementation shares state
// across server instances; the in-memory one backs tests and single-node
// deployments.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Memory struct {
	buckets map[string]*bucket
	mu      sync.Mutex
	rate    rate.Limit
	burst   int
	ttl     time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemory(rps float64, burst int, ttl time.Duration) *Memory {
	m := &Memory{
		buckets: make(map[string]*bucket),
		rate:    rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
	}

	go m.cleanup()

	return m
}

func (m *Memory) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		m.mu.Lock()
		for key, b := range m.buckets {
			if time.Since(b.lastSeen) > m.ttl {
				delete(m.buckets, key)
			}
		}
		m.mu.Unlock()
	}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	b, exists := m.buckets[key]
	if !exists {
		b = &bucket{limiter: rate.NewLimiter(m.rate, m.burst)}
		m.buckets[key] = b
	}
	b.lastSeen = time.Now()
	m.mu.Unlock()

	return b.limiter.Allow(), nil
}
