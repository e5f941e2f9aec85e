package api

import (
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/ifrs17-reporting/internal/errors"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long a client may stay silent before its limiter is dropped.
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// RateLimiter manages per-client rate limiting for API requests
type RateLimiter struct {
	limiters map[string]*clientLimiter
	mu       sync.RWMutex

	limit rate.Limit

	// Burst size (number of requests that can be made in a burst)
	burstSize int

	idleTTL   time.Duration
	lastSweep time.Time // guarded by mu
	now       func() time.Time
}

// NewRateLimiter creates a new rate limiter. A non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters:  make(map[string]*clientLimiter),
		limit:     limit,
		burstSize: burst,
		idleTTL:   limiterIdleTTL,
		now:       time.Now,
	}
}

// getLimiter returns the rate limiter for a specific client
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.RLock()
	entry, exists := rl.limiters[key]
	rl.mu.RUnlock()

	if exists {
		entry.lastSeen.Store(now.UnixNano())
		return entry.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Double-check in case another goroutine created it
	if entry, exists := rl.limiters[key]; exists {
		entry.lastSeen.Store(now.UnixNano())
		return entry.limiter
	}

	// The map only grows here, so idle clients are swept here too
	if now.Sub(rl.lastSweep) >= rl.idleTTL {
		rl.sweepLocked(now)
	}

	entry = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burstSize)}
	entry.lastSeen.Store(now.UnixNano())
	rl.limiters[key] = entry

	return entry.limiter
}

// sweepLocked drops limiters idle for at least idleTTL. Caller holds mu.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	cutoff := now.Add(-rl.idleTTL).UnixNano()
	for key, entry := range rl.limiters {
		if entry.lastSeen.Load() <= cutoff {
			delete(rl.limiters, key)
		}
	}
	rl.lastSweep = now
}

// clientKey identifies the caller by remote IP.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware creates a middleware that enforces rate limiting
func RateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := rl.getLimiter(clientKey(r))

			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				respondServiceError(w, r, apperrors.NewRateLimitError(float64(limiter.Limit())))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
