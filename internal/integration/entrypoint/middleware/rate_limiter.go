package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/finance-tracker/platform/internal/application/adapter"
	domainerror "github.com/finance-tracker/platform/internal/domain/error"
)

const (
	defaultLimit  = 5
	defaultWindow = time.Minute
)

// RateLimitStore counts attempts per key in fixed windows.
type RateLimitStore interface {
	// Allow records an attempt for key and reports whether it is within the limit.
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimiter throttles a route group per client IP.
type RateLimiter struct {
	store   RateLimitStore
	scope   string
	enabled bool
}

// NewRateLimiter creates a limiter whose keys are prefixed with scope. A
// disabled limiter lets every request through.
func NewRateLimiter(store RateLimitStore, scope string, enabled bool) *RateLimiter {
	return &RateLimiter{store: store, scope: scope, enabled: enabled}
}

// Handler fails open when the store errors.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.enabled {
			c.Next()
			return
		}

		allowed, err := rl.store.Allow(c.Request.Context(), rl.scope+":"+c.ClientIP())
		if err != nil {
			slog.Warn("Rate limit store unavailable", "error", err, "scope", rl.scope)
			c.Next()
			return
		}
		if !allowed {
			abort(c, http.StatusTooManyRequests, domainerror.CodeRateLimited, "Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}

type window struct {
	attempts int
	resetAt  time.Time
}

// MemoryRateLimitStore keeps counters in process memory. Expired windows
// are dropped at most once per window length.
type MemoryRateLimitStore struct {
	mu        sync.Mutex
	windows   map[string]*window
	limit     int
	length    time.Duration
	clock     adapter.Clock
	lastPrune time.Time
}

// NewMemoryRateLimitStore creates a store; non-positive arguments default to
// five attempts per minute.
func NewMemoryRateLimitStore(limit int, length time.Duration, clock adapter.Clock) *MemoryRateLimitStore {
	if limit <= 0 {
		limit = defaultLimit
	}
	if length <= 0 {
		length = defaultWindow
	}
	return &MemoryRateLimitStore{
		windows:   make(map[string]*window),
		limit:     limit,
		length:    length,
		clock:     clock,
		lastPrune: clock.Now(),
	}
}

func (s *MemoryRateLimitStore) Allow(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if now.Sub(s.lastPrune) >= s.length {
		s.prune(now)
	}

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		s.windows[key] = &window{attempts: 1, resetAt: now.Add(s.length)}
		return true, nil
	}
	if w.attempts >= s.limit {
		return false, nil
	}
	w.attempts++
	return true, nil
}

// Len returns how many windows are tracked.
func (s *MemoryRateLimitStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

func (s *MemoryRateLimitStore) prune(now time.Time) {
	for key, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, key)
		}
	}
	s.lastPrune = now
}

// RedisRateLimitStore shares counters between API instances.
type RedisRateLimitStore struct {
	client redis.UniversalClient
	prefix string
	limit  int64
	length time.Duration
}

// NewRedisRateLimitStore creates a store; non-positive arguments default to
// five attempts per minute.
func NewRedisRateLimitStore(client redis.UniversalClient, limit int, length time.Duration) *RedisRateLimitStore {
	if limit <= 0 {
		limit = defaultLimit
	}
	if length <= 0 {
		length = defaultWindow
	}
	return &RedisRateLimitStore{client: client, prefix: "ratelimit:", limit: int64(limit), length: length}
}

// Allow counts the attempt with INCR and opens the window with EXPIRE NX. The
// EXPIRE runs on every attempt, so a counter whose TTL was never set gets one
// on the next attempt.
func (s *RedisRateLimitStore) Allow(ctx context.Context, key string) (bool, error) {
	k := s.prefix + key

	attempts, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("count attempt: %w", err)
	}
	if err := s.client.ExpireNX(ctx, k, s.length).Err(); err != nil {
		return false, fmt.Errorf("set rate limit window: %w", err)
	}
	return attempts <= s.limit, nil
}

var (
	_ RateLimitStore = (*MemoryRateLimitStore)(nil)
	_ RateLimitStore = (*RedisRateLimitStore)(nil)
)
