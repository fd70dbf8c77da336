// Package ratelimit keeps one token bucket per key.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type KeyedRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func New(rps float64, burst int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// PerHour allows n events per hour with a burst of n. n <= 0 disables limiting.
func PerHour(n int) *KeyedRateLimiter {
	if n <= 0 {
		return New(float64(rate.Inf), 1)
	}
	return New(float64(rate.Every(time.Hour/time.Duration(n))), n)
}

func (k *KeyedRateLimiter) Allow(key string) bool {
	return k.limiter(key).Allow()
}

// AllowAt is Allow against an explicit clock reading.
func (k *KeyedRateLimiter) AllowAt(key string, now time.Time) bool {
	return k.limiter(key).AllowN(now, 1)
}

func (k *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	return k.limiter(key).Wait(ctx)
}

func (k *KeyedRateLimiter) limiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.limiters[key]
	if !ok {
		l = rate.NewLimiter(k.limit, k.burst)
		k.limiters[key] = l
	}
	return l
}
