package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/riskibarqy/prediction-league/internal/platform/metrics"
	"golang.org/x/time/rate"
)

var errRateLimited = errors.New("rate limit exceeded")

const (
	limiterCleanupThreshold = 1024
	limiterIdleTTL          = 10 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter hands out one token bucket per authenticated user and prunes
// idle buckets once the map grows past limiterCleanupThreshold.
type UserRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewUserRateLimiter allows perMinute requests per user with the given burst.
// A non-positive perMinute disables limiting.
func NewUserRateLimiter(perMinute, burst int) *UserRateLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &UserRateLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		now:     time.Now,
	}
}

func (l *UserRateLimiter) Allow(userID string) bool {
	if l == nil {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) > limiterCleanupThreshold {
		for key, e := range l.entries {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(l.entries, key)
			}
		}
	}

	e, ok := l.entries[userID]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[userID] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// RateLimitPerUser keys on the authenticated user, falling back to the client
// address for unauthenticated routes.
func RateLimitPerUser(limiter *UserRateLimiter, route string, recorder *metrics.Recorder, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.RateLimitPerUser")
		defer span.End()

		if key := rateLimitKey(r); key != "" && !limiter.Allow(key) {
			recorder.RateLimited(route)
			writeError(ctx, w, fmt.Errorf("%w: route=%s", errRateLimited, route))
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
