package interceptor

import (
	"time"

	"github.com/sony/gobreaker"

	"github.com/dispatchkit/dispatchkit/internal/observability"
	"github.com/dispatchkit/dispatchkit/internal/request"
)

// attrBreakerDone carries the per-request completion callback between
// the pre and after-completion hooks.
const attrBreakerDone = "dispatchkit.interceptor.circuitbreaker.done"

// CircuitBreaker short-circuits requests while the underlying breaker
// is open and reports each request's outcome back to it. The two-phase
// hook protocol maps directly onto gobreaker's two-step API: Allow in
// PreHandle, the done callback in AfterCompletion.
type CircuitBreaker struct {
	cb     *gobreaker.TwoStepCircuitBreaker
	logger observability.Logger
}

// CircuitBreakerOption is a functional option for configuring the
// circuit breaker interceptor.
type CircuitBreakerOption func(*CircuitBreaker)

// WithCircuitBreakerLogger sets the logger.
func WithCircuitBreakerLogger(logger observability.Logger) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		cb.logger = logger
	}
}

// NewCircuitBreaker creates a circuit breaker interceptor. The breaker
// trips when at least threshold requests have been observed in the
// interval and more than half of them failed.
func NewCircuitBreaker(name string, threshold uint32, timeout time.Duration, opts ...CircuitBreakerOption) *CircuitBreaker {
	c := &CircuitBreaker{
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: threshold,
		Interval:    timeout,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= threshold && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.Info("circuit breaker state change",
				observability.String("name", name),
				observability.String("from", from.String()),
				observability.String("to", to.String()),
			)
		},
	}

	c.cb = gobreaker.NewTwoStepCircuitBreaker(settings)
	return c
}

// PreHandle short-circuits when the breaker rejects the request.
func (c *CircuitBreaker) PreHandle(rc *request.Context, handler any) (bool, error) {
	done, err := c.cb.Allow()
	if err != nil {
		c.logger.Warn("circuit breaker rejected request",
			observability.String("request_id", rc.ID()),
			observability.String("path", rc.Path()),
			observability.Error(err),
		)
		return false, nil
	}

	rc.Set(attrBreakerDone, done)
	return true, nil
}

// PostHandle is a no-op.
func (c *CircuitBreaker) PostHandle(rc *request.Context, handler any, result any) error {
	return nil
}

// AfterCompletion reports the request outcome to the breaker.
func (c *CircuitBreaker) AfterCompletion(rc *request.Context, handler any, cause error) error {
	v, ok := rc.Get(attrBreakerDone)
	if !ok {
		return nil
	}
	done, ok := v.(func(bool))
	if !ok {
		return nil
	}

	done(cause == nil)
	return nil
}
