package dispatch

import (
	"github.com/dispatchkit/dispatchkit/internal/request"
	"github.com/dispatchkit/dispatchkit/internal/util"
)

// HandlerAdapter knows how to invoke one shape of handler reference.
// Mappings hand out opaque handlers; an adapter registry decides which
// adapter can execute a given reference at dispatch time.
type HandlerAdapter interface {
	// Supports reports whether this adapter can invoke the handler.
	Supports(handler any) bool

	// Handle invokes the handler and returns its result.
	Handle(rc *request.Context, handler any) (any, error)
}

// HandlerFunc is the built-in function handler shape.
type HandlerFunc func(rc *request.Context) (any, error)

// funcAdapter invokes HandlerFunc and bare func values of the same
// signature.
type funcAdapter struct{}

func (funcAdapter) Supports(handler any) bool {
	switch handler.(type) {
	case HandlerFunc, func(*request.Context) (any, error):
		return true
	}
	return false
}

func (funcAdapter) Handle(rc *request.Context, handler any) (any, error) {
	switch h := handler.(type) {
	case HandlerFunc:
		return h(rc)
	case func(*request.Context) (any, error):
		return h(rc)
	}
	return nil, &util.AdapterError{Handler: handler}
}

// AdapterRegistry holds handler adapters in registration order. The
// first adapter that supports a handler wins.
type AdapterRegistry struct {
	adapters []HandlerAdapter
}

// NewAdapterRegistry creates a registry pre-populated with the built-in
// function adapter, followed by any extra adapters.
func NewAdapterRegistry(extra ...HandlerAdapter) *AdapterRegistry {
	adapters := make([]HandlerAdapter, 0, len(extra)+1)
	adapters = append(adapters, funcAdapter{})
	adapters = append(adapters, extra...)
	return &AdapterRegistry{adapters: adapters}
}

// Lookup returns the first adapter supporting the handler, or an
// AdapterError when none does.
func (r *AdapterRegistry) Lookup(handler any) (HandlerAdapter, error) {
	if handler == nil {
		return nil, util.ErrNilHandler
	}
	for _, adapter := range r.adapters {
		if adapter.Supports(handler) {
			return adapter, nil
		}
	}
	return nil, &util.AdapterError{Handler: handler}
}
