package dispatch

import (
	"github.com/dispatchkit/dispatchkit/internal/request"
)

// Interceptor is a cross-cutting hook invoked around a handler call.
//
// Implementations must be stateless or read-mostly: one interceptor
// instance is shared by every chain that references it and its hooks may
// run concurrently for different requests. Hooks for a single request
// are never invoked concurrently with each other.
type Interceptor interface {
	// PreHandle runs before the handler. Returning false short-circuits
	// the request without an error: the handler and any later hooks are
	// skipped, and only after-completion cleanup follows. Returning an
	// error aborts the request as an internal fault.
	PreHandle(rc *request.Context, handler any) (bool, error)

	// PostHandle runs after the handler completed successfully, in
	// reverse registration order. It is skipped entirely when any
	// pre-hook short-circuited or the handler failed.
	PostHandle(rc *request.Context, handler any, result any) error

	// AfterCompletion is the cleanup phase. It runs exactly once for
	// every interceptor whose PreHandle was invoked, regardless of how
	// the request ended. cause is the handler or hook error, nil on
	// success or short-circuit.
	AfterCompletion(rc *request.Context, handler any, cause error) error
}
