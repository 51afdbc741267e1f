package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	ActionLogin       = "login"
	ActionBypass      = "bypass"
	ActionPlaceOrder  = "place_order"
	ActionOpenBox     = "open_box"
	ActionGeneral     = "general"
	defaultIdleExpiry = time.Hour
)

// Policy is the sustained rate and burst allowed for one action.
type Policy struct {
	Limit rate.Limit
	Burst int
}

func PerMinute(n int) Policy {
	if n <= 0 {
		n = 1
	}
	return Policy{Limit: rate.Every(time.Minute / time.Duration(n)), Burst: n}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per (key, action) pair, where key is usually a client IP
// or a session id.
type RateLimiter struct {
	buckets  map[string]*bucket
	policies map[string]Policy
	fallback Policy
	expiry   time.Duration
	mutex    sync.Mutex
}

func NewRateLimiter(loginPerMinute int) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		policies: map[string]Policy{
			ActionLogin:      PerMinute(loginPerMinute),
			ActionBypass:     PerMinute(3),
			ActionPlaceOrder: PerMinute(10),
			ActionOpenBox:    PerMinute(10),
		},
		fallback: PerMinute(120),
		expiry:   defaultIdleExpiry,
	}
}

// SetPolicy overrides the limit for an action.
func (rl *RateLimiter) SetPolicy(action string, p Policy) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	rl.policies[action] = p
}

// Allow consumes a token for key and action. When none is available it reports how long
// the caller has to wait.
func (rl *RateLimiter) Allow(key, action string) (bool, time.Duration) {
	now := time.Now()
	limiter := rl.limiterFor(key, action, now)

	reservation := limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, rl.expiry
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (rl *RateLimiter) limiterFor(key, action string, now time.Time) *rate.Limiter {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	id := key + ":" + action
	b, exists := rl.buckets[id]
	if !exists {
		p, ok := rl.policies[action]
		if !ok {
			p = rl.fallback
		}
		b = &bucket{limiter: rate.NewLimiter(p.Limit, p.Burst)}
		rl.buckets[id] = b
	}
	b.lastSeen = now
	return b.limiter
}

// Cleanup removes buckets that have not been used recently.
func (rl *RateLimiter) Cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	for id, b := range rl.buckets {
		if now.Sub(b.lastSeen) > rl.expiry {
			delete(rl.buckets, id)
		}
	}
}

func (rl *RateLimiter) Size() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return len(rl.buckets)
}

// StartCleanupRoutine runs Cleanup periodically until ctx is done.
func (rl *RateLimiter) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup()
			}
		}
	}()
}
