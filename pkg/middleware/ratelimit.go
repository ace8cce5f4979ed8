package middleware

import (
	"errors"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/JaimeStill/transflow/pkg/handlers"
	"github.com/JaimeStill/transflow/pkg/lifecycle"
)

// ErrRateLimited is returned to callers that exceed their request budget.
var ErrRateLimited = errors.New("rate limit exceeded")

// KeyFunc derives the rate limit bucket for a request.
type KeyFunc func(r *http.Request) string

// RemoteAddrKey buckets requests by client IP.
func RemoteAddrKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type timedLimiter struct {
	limiter  *rate.Limiter
	lastUsed atomic.Int64
}

// RateLimiter applies a token bucket per key.
type RateLimiter struct {
	cfg    *RateLimitConfig
	key    KeyFunc
	logger *slog.Logger

	mu       sync.RWMutex
	limiters map[string]*timedLimiter
}

// NewRateLimiter creates a RateLimiter. A nil key buckets by remote address.
func NewRateLimiter(cfg *RateLimitConfig, key KeyFunc, logger *slog.Logger) *RateLimiter {
	if key == nil {
		key = RemoteAddrKey
	}
	return &RateLimiter{
		cfg:      cfg,
		key:      key,
		logger:   logger.With("middleware", "ratelimit"),
		limiters: make(map[string]*timedLimiter),
	}
}

// Start registers a background sweep of idle limiters that stops on shutdown.
func (rl *RateLimiter) Start(lc *lifecycle.Coordinator) {
	if !rl.cfg.Active() {
		return
	}

	ttl := rl.cfg.IdleTTLDuration()

	lc.OnShutdown(func() {
		ticker := time.NewTicker(ttl)
		defer ticker.Stop()

		for {
			select {
			case <-lc.Context().Done():
				return
			case <-ticker.C:
				if n := rl.Sweep(ttl); n > 0 {
					rl.logger.Debug("idle limiters removed", "count", n)
				}
			}
		}
	})
}

// Sweep removes limiters unused for at least ttl and reports how many were removed.
func (rl *RateLimiter) Sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl).UnixNano()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for k, tl := range rl.limiters {
		if tl.lastUsed.Load() <= cutoff {
			delete(rl.limiters, k)
			removed++
		}
	}
	return removed
}

// Middleware rejects requests over budget with 429 and a Retry-After header.
func (rl *RateLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.cfg.Active() || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			limiter := rl.limiter(rl.key(r))
			if !limiter.Allow() {
				reservation := limiter.Reserve()
				delay := reservation.Delay()
				reservation.Cancel()

				retryAfter := max(int(math.Ceil(delay.Seconds())), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				handlers.RespondError(w, rl.logger, http.StatusTooManyRequests, ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	now := time.Now().UnixNano()

	rl.mu.RLock()
	if tl, ok := rl.limiters[key]; ok {
		tl.lastUsed.Store(now)
		lim := tl.limiter
		rl.mu.RUnlock()
		return lim
	}
	rl.mu.RUnlock()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if tl, ok := rl.limiters[key]; ok {
		tl.lastUsed.Store(now)
		return tl.limiter
	}

	tl := &timedLimiter{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)}
	tl.lastUsed.Store(now)
	rl.limiters[key] = tl
	return tl.limiter
}
