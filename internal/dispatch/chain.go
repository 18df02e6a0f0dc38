package dispatch

import (
	"fmt"

	"github.com/dispatchkit/dispatchkit/internal/observability"
	"github.com/dispatchkit/dispatchkit/internal/request"
)

// ExecutionChain pairs one matched handler with the ordered interceptors
// that wrap its invocation. A chain is produced per successful match and
// consumed by exactly one request; the handler and interceptor sequence
// are fixed at construction time.
type ExecutionChain struct {
	handler      any
	interceptors []Interceptor
	logger       observability.Logger

	// started counts the interceptors whose PreHandle has been invoked.
	// TriggerAfterCompletion walks them back in reverse.
	started int
}

// ChainOption is a functional option for configuring an execution chain.
type ChainOption func(*ExecutionChain)

// WithChainLogger sets the logger used to report isolated cleanup
// failures.
func WithChainLogger(logger observability.Logger) ChainOption {
	return func(c *ExecutionChain) {
		c.logger = logger
	}
}

// NewExecutionChain creates a chain around handler with the given
// interceptors in invocation order.
func NewExecutionChain(handler any, interceptors []Interceptor, opts ...ChainOption) *ExecutionChain {
	c := &ExecutionChain{
		handler:      handler,
		interceptors: append([]Interceptor(nil), interceptors...),
		logger:       observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Handler returns the opaque handler reference.
func (c *ExecutionChain) Handler() any {
	return c.handler
}

// Interceptors returns a copy of the interceptor sequence.
func (c *ExecutionChain) Interceptors() []Interceptor {
	return append([]Interceptor(nil), c.interceptors...)
}

// ApplyPreHandle runs each interceptor's PreHandle in registration
// order. It stops at the first interceptor that returns false or fails
// and reports whether the handler should be invoked. The caller must
// invoke TriggerAfterCompletion afterwards on every exit path.
func (c *ExecutionChain) ApplyPreHandle(rc *request.Context) (bool, error) {
	for i, interceptor := range c.interceptors {
		// The interceptor counts as started the moment its pre-hook is
		// invoked, so cleanup reaches it even when the hook rejects or
		// fails.
		c.started = i + 1

		proceed, err := interceptor.PreHandle(rc, c.handler)
		if err != nil {
			return false, err
		}
		if !proceed {
			return false, nil
		}
	}
	return true, nil
}

// ApplyPostHandle runs each interceptor's PostHandle in reverse
// registration order. It must only be called after ApplyPreHandle
// returned true and the handler completed without error. The first
// failing post-hook aborts the rest.
func (c *ExecutionChain) ApplyPostHandle(rc *request.Context, result any) error {
	for i := len(c.interceptors) - 1; i >= 0; i-- {
		if err := c.interceptors[i].PostHandle(rc, c.handler, result); err != nil {
			return err
		}
	}
	return nil
}

// TriggerAfterCompletion runs the AfterCompletion hook of every started
// interceptor in reverse order of pre-hook execution. cause carries the
// handler or hook error that ended the request, nil otherwise. Failures
// inside a cleanup hook, including panics, are logged and do not prevent
// the remaining cleanups from running.
func (c *ExecutionChain) TriggerAfterCompletion(rc *request.Context, cause error) {
	for i := c.started - 1; i >= 0; i-- {
		c.afterCompletion(rc, c.interceptors[i], cause)
	}
}

func (c *ExecutionChain) afterCompletion(rc *request.Context, interceptor Interceptor, cause error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("after-completion hook panicked",
				observability.String("request_id", rc.ID()),
				observability.Any("panic", r),
			)
		}
	}()

	if err := interceptor.AfterCompletion(rc, c.handler, cause); err != nil {
		c.logger.Error("after-completion hook failed",
			observability.String("request_id", rc.ID()),
			observability.Error(fmt.Errorf("after completion: %w", err)),
		)
	}
}
