package mapping

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/cel-go/cel"

	"github.com/dispatchkit/dispatchkit/internal/dispatch"
	"github.com/dispatchkit/dispatchkit/internal/observability"
	"github.com/dispatchkit/dispatchkit/internal/request"
	"github.com/dispatchkit/dispatchkit/internal/util"
)

// celRoute is one predicate-guarded handler registration.
type celRoute struct {
	expr         string
	program      cel.Program
	handler      any
	interceptors []dispatch.Interceptor
}

// CELMapping maps requests to handlers through CEL predicates evaluated
// over the request identity. Expressions see the variables:
//
//	method  string              upper-cased HTTP method
//	path    string              request path
//	headers map[string]string   first value per canonical header name
//	query   map[string]string   first value per query parameter
//
// Routes are consulted in registration order; the first expression that
// evaluates to true wins. A CEL evaluation error is an internal fault
// and aborts resolution.
//
// CELMapping records only the metadata subset it supports: the lookup
// path and the best matching handler.
type CELMapping struct {
	name         string
	env          *cel.Env
	routes       []celRoute
	interceptors []dispatch.Interceptor
	logger       observability.Logger
}

// CELMappingOption configures a CELMapping.
type CELMappingOption func(*CELMapping)

// WithCELMappingName sets the mapping name used in error reporting.
func WithCELMappingName(name string) CELMappingOption {
	return func(m *CELMapping) {
		m.name = name
	}
}

// WithCELMappingInterceptors sets interceptors applied to every route
// of this mapping, ahead of route-local ones.
func WithCELMappingInterceptors(interceptors ...dispatch.Interceptor) CELMappingOption {
	return func(m *CELMapping) {
		m.interceptors = interceptors
	}
}

// WithCELMappingLogger sets the logger.
func WithCELMappingLogger(logger observability.Logger) CELMappingOption {
	return func(m *CELMapping) {
		m.logger = logger
	}
}

// NewCELMapping creates an empty CEL mapping.
func NewCELMapping(opts ...CELMappingOption) (*CELMapping, error) {
	env, err := cel.NewEnv(
		cel.Variable("method", cel.StringType),
		cel.Variable("path", cel.StringType),
		cel.Variable("headers", cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable("query", cel.MapType(cel.StringType, cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	m := &CELMapping{
		name:   "cel",
		env:    env,
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Handle registers a handler guarded by a CEL expression. The
// expression must evaluate to a boolean.
func (m *CELMapping) Handle(expr string, handler any, interceptors ...dispatch.Interceptor) error {
	if handler == nil {
		return util.ErrNilHandler
	}

	ast, issues := m.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("failed to compile expression %q: %w", expr, issues.Err())
	}

	program, err := m.env.Program(ast)
	if err != nil {
		return fmt.Errorf("failed to create program for %q: %w", expr, err)
	}

	m.routes = append(m.routes, celRoute{
		expr:         expr,
		program:      program,
		handler:      handler,
		interceptors: interceptors,
	})
	return nil
}

// Match implements HandlerMapping.
func (m *CELMapping) Match(rc *request.Context) (*dispatch.ExecutionChain, bool, error) {
	evalCtx := map[string]any{
		"method":  rc.Method(),
		"path":    rc.Path(),
		"headers": firstValues(rc.Header()),
		"query":   firstQueryValues(rc.Query()),
	}

	for _, route := range m.routes {
		result, _, err := route.program.Eval(evalCtx)
		if err != nil {
			return nil, false, &util.MappingError{
				Mapping: m.name,
				Message: fmt.Sprintf("evaluation of %q failed", route.expr),
				Cause:   err,
			}
		}

		matched, ok := result.Value().(bool)
		if !ok || !matched {
			continue
		}

		rc.Set(request.AttrLookupPath, rc.Path())
		rc.Set(request.AttrBestMatchingHandler, route.handler)

		interceptors := make([]dispatch.Interceptor, 0, len(m.interceptors)+len(route.interceptors))
		interceptors = append(interceptors, m.interceptors...)
		interceptors = append(interceptors, route.interceptors...)

		chain := dispatch.NewExecutionChain(route.handler, interceptors,
			dispatch.WithChainLogger(m.logger))
		return chain, true, nil
	}

	return nil, false, nil
}

// firstValues flattens headers to their first value per canonical name.
func firstValues(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) > 0 {
			out[name] = values[0]
		}
	}
	return out
}

// firstQueryValues flattens query parameters to their first value.
func firstQueryValues(q url.Values) map[string]string {
	out := make(map[string]string, len(q))
	for name, values := range q {
		if len(values) > 0 {
			out[name] = values[0]
		}
	}
	return out
}
