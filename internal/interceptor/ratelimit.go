package interceptor

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dispatchkit/dispatchkit/internal/observability"
	"github.com/dispatchkit/dispatchkit/internal/request"
)

// DefaultClientTTL is the default TTL for per-client limiter entries.
const DefaultClientTTL = 10 * time.Minute

// KeyFunc derives the rate-limiting key from a request. An empty key
// uses the shared limiter.
type KeyFunc func(rc *request.Context) string

// limiterEntry holds a per-client limiter and its last access time.
type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimit rejects requests that exceed a token-bucket rate by
// short-circuiting the chain. Rejection is normal control flow, not an
// error.
type RateLimit struct {
	limiter   *rate.Limiter
	rps       int
	burst     int
	keyFunc   KeyFunc
	clientTTL time.Duration
	logger    observability.Logger

	mu      sync.Mutex
	clients map[string]*limiterEntry
}

// RateLimitOption is a functional option for configuring the rate
// limit interceptor.
type RateLimitOption func(*RateLimit)

// WithRateLimitLogger sets the logger.
func WithRateLimitLogger(logger observability.Logger) RateLimitOption {
	return func(rl *RateLimit) {
		rl.logger = logger
	}
}

// WithRateLimitKeyFunc enables per-client limiting keyed by the given
// function.
func WithRateLimitKeyFunc(fn KeyFunc) RateLimitOption {
	return func(rl *RateLimit) {
		rl.keyFunc = fn
	}
}

// WithClientTTL overrides the per-client entry TTL.
func WithClientTTL(ttl time.Duration) RateLimitOption {
	return func(rl *RateLimit) {
		rl.clientTTL = ttl
	}
}

// NewRateLimit creates a rate limit interceptor allowing rps requests
// per second with the given burst.
func NewRateLimit(rps, burst int, opts ...RateLimitOption) *RateLimit {
	rl := &RateLimit{
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		rps:       rps,
		burst:     burst,
		clientTTL: DefaultClientTTL,
		logger:    observability.NopLogger(),
		clients:   make(map[string]*limiterEntry),
	}

	for _, opt := range opts {
		opt(rl)
	}

	return rl
}

// PreHandle short-circuits when the bucket is empty.
func (rl *RateLimit) PreHandle(rc *request.Context, handler any) (bool, error) {
	if rl.limiterFor(rc).Allow() {
		return true, nil
	}

	rl.logger.Warn("rate limit exceeded",
		observability.String("request_id", rc.ID()),
		observability.String("path", rc.Path()),
	)
	return false, nil
}

// PostHandle is a no-op.
func (rl *RateLimit) PostHandle(rc *request.Context, handler any, result any) error {
	return nil
}

// AfterCompletion is a no-op.
func (rl *RateLimit) AfterCompletion(rc *request.Context, handler any, cause error) error {
	return nil
}

// limiterFor returns the limiter for the request's key, creating and
// expiring per-client entries as needed.
func (rl *RateLimit) limiterFor(rc *request.Context) *rate.Limiter {
	if rl.keyFunc == nil {
		return rl.limiter
	}

	key := rl.keyFunc(rc)
	if key == "" {
		return rl.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for k, entry := range rl.clients {
		if now.Sub(entry.lastAccess) > rl.clientTTL {
			delete(rl.clients, k)
		}
	}

	entry, ok := rl.clients[key]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(rl.rps), rl.burst),
		}
		rl.clients[key] = entry
	}
	entry.lastAccess = now

	return entry.limiter
}
