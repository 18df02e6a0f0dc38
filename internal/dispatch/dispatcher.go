package dispatch

import (
	"fmt"

	"github.com/dispatchkit/dispatchkit/internal/observability"
	"github.com/dispatchkit/dispatchkit/internal/request"
)

// Resolver produces an execution chain for a request, or reports that no
// mapping matched. It is satisfied by mapping.Registry.
type Resolver interface {
	Resolve(rc *request.Context) (*ExecutionChain, bool, error)
}

// Dispatcher resolves a request to a chain and drives the full
// invocation protocol around the matched handler.
type Dispatcher struct {
	resolver Resolver
	adapters *AdapterRegistry
	logger   observability.Logger
}

// DispatcherOption is a functional option for configuring a dispatcher.
type DispatcherOption func(*Dispatcher)

// WithAdapters sets the handler adapter registry.
func WithAdapters(adapters *AdapterRegistry) DispatcherOption {
	return func(d *Dispatcher) {
		d.adapters = adapters
	}
}

// WithDispatcherLogger sets the dispatcher logger.
func WithDispatcherLogger(logger observability.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a dispatcher over the given resolver.
func NewDispatcher(resolver Resolver, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		resolver: resolver,
		adapters: NewAdapterRegistry(),
		logger:   observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Dispatch resolves the request and, on a match, runs the chain.
//
// found is false when no mapping matched; that is a normal terminal
// outcome, not an error. When a pre-hook short-circuits the request,
// found is true and both result and err are nil. On any failure the
// cleanup phase has already run for every started interceptor before
// Dispatch returns.
func (d *Dispatcher) Dispatch(rc *request.Context) (result any, found bool, err error) {
	chain, ok, err := d.resolver.Resolve(rc)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		d.logger.Debug("no handler found",
			observability.String("request_id", rc.ID()),
			observability.String("method", rc.Method()),
			observability.String("path", rc.Path()),
		)
		return nil, false, nil
	}

	found = true
	defer func() {
		chain.TriggerAfterCompletion(rc, err)
	}()

	proceed, err := chain.ApplyPreHandle(rc)
	if err != nil {
		return nil, found, err
	}
	if !proceed {
		return nil, found, nil
	}

	result, err = d.invokeHandler(rc, chain.Handler())
	if err != nil {
		return nil, found, err
	}

	if err = chain.ApplyPostHandle(rc, result); err != nil {
		return nil, found, err
	}

	return result, found, nil
}

// invokeHandler runs the handler through its adapter, converting a
// panic into an error so the cleanup phase still observes it.
func (d *Dispatcher) invokeHandler(rc *request.Context, handler any) (result any, err error) {
	adapter, err := d.adapters.Lookup(handler)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panicked",
				observability.String("request_id", rc.ID()),
				observability.Any("panic", r),
			)
			result = nil
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	return adapter.Handle(rc, handler)
}
