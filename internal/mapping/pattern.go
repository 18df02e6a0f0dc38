package mapping

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/dispatchkit/dispatchkit/internal/dispatch"
	"github.com/dispatchkit/dispatchkit/internal/observability"
	"github.com/dispatchkit/dispatchkit/internal/request"
	"github.com/dispatchkit/dispatchkit/internal/util"
)

// Route specificity constants. More specific routes are consulted
// first within one PatternMapping.
const (
	priorityExactMatch    = 1000
	priorityTemplateMatch = 800
	priorityPrefixMatch   = 500
	priorityWildcardMatch = 200
	priorityRegexMatch    = 100

	priorityMethodRestriction   = 50
	priorityProducesRestriction = 5
)

// matchKind selects how a route pattern is interpreted.
type matchKind int

const (
	matchAuto matchKind = iota
	matchPrefix
	matchRegex
)

// patternRoute is one registered route inside a PatternMapping.
type patternRoute struct {
	pattern      string
	kind         matchKind
	matcher      PathMatcher
	methods      map[string]bool
	produces     []string
	interceptors []dispatch.Interceptor
	handler      any
	introspect   bool
	matrix       bool
	priority     int
}

// RouteOption configures a single route registration.
type RouteOption func(*patternRoute)

// WithMethods restricts the route to the given HTTP methods. "*"
// matches any method; HEAD matches a GET-restricted route.
func WithMethods(methods ...string) RouteOption {
	return func(r *patternRoute) {
		r.methods = make(map[string]bool, len(methods))
		for _, m := range methods {
			r.methods[strings.ToUpper(m)] = true
		}
	}
}

// WithProduces declares the media types the handler can produce; they
// are recorded as match metadata.
func WithProduces(mediaTypes ...string) RouteOption {
	return func(r *patternRoute) {
		r.produces = mediaTypes
	}
}

// WithRouteInterceptors adds interceptors that apply to this route
// only, after the mapping-wide ones.
func WithRouteInterceptors(interceptors ...dispatch.Interceptor) RouteOption {
	return func(r *patternRoute) {
		r.interceptors = interceptors
	}
}

// WithIntrospection requests type-level mapping introspection for the
// route.
func WithIntrospection() RouteOption {
	return func(r *patternRoute) {
		r.introspect = true
	}
}

// WithMatrixVariables enables matrix variable extraction for segments
// bound to template variables.
func WithMatrixVariables() RouteOption {
	return func(r *patternRoute) {
		r.matrix = true
	}
}

// WithPrefixMatch matches the pattern as a path prefix at segment
// boundaries instead of an exact path.
func WithPrefixMatch() RouteOption {
	return func(r *patternRoute) {
		r.kind = matchPrefix
	}
}

// WithRegexMatch treats the pattern as a raw regular expression; named
// capture groups become template variables.
func WithRegexMatch() RouteOption {
	return func(r *patternRoute) {
		r.kind = matchRegex
	}
}

// PatternMapping maps requests to handlers by URL pattern. Routes are
// registered at startup and ordered by specificity: exact patterns win
// over templates, templates over prefixes, prefixes over wildcards and
// regexes, with method and produces restrictions adding specificity.
//
// Registration is not safe to run concurrently with matching; build the
// mapping fully before handing it to a registry.
type PatternMapping struct {
	name         string
	routes       []*patternRoute
	interceptors []dispatch.Interceptor
	logger       observability.Logger
}

// PatternOption configures a PatternMapping.
type PatternOption func(*PatternMapping)

// WithName sets the mapping name used in error reporting.
func WithName(name string) PatternOption {
	return func(m *PatternMapping) {
		m.name = name
	}
}

// WithInterceptors sets interceptors applied to every route of this
// mapping, ahead of route-local ones.
func WithInterceptors(interceptors ...dispatch.Interceptor) PatternOption {
	return func(m *PatternMapping) {
		m.interceptors = interceptors
	}
}

// WithMappingLogger sets the logger.
func WithMappingLogger(logger observability.Logger) PatternOption {
	return func(m *PatternMapping) {
		m.logger = logger
	}
}

// NewPatternMapping creates an empty pattern mapping.
func NewPatternMapping(opts ...PatternOption) *PatternMapping {
	m := &PatternMapping{
		name:   "pattern",
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Handle registers a handler for a pattern. The matcher kind is derived
// from the pattern ({var} templates, * and ? wildcards, otherwise
// exact) unless WithPrefixMatch or WithRegexMatch overrides it.
func (m *PatternMapping) Handle(pattern string, handler any, opts ...RouteOption) error {
	if handler == nil {
		return util.ErrNilHandler
	}

	route := &patternRoute{
		pattern: pattern,
		handler: handler,
	}
	for _, opt := range opts {
		opt(route)
	}

	if err := m.compileRoute(route); err != nil {
		return err
	}

	route.priority += m.restrictionPriority(route)

	m.routes = append(m.routes, route)
	sort.SliceStable(m.routes, func(i, j int) bool {
		return m.routes[i].priority > m.routes[j].priority
	})

	return nil
}

// compileRoute resolves the matcher and base specificity for a route.
func (m *PatternMapping) compileRoute(route *patternRoute) error {
	if route.kind == matchRegex {
		matcher, err := NewRegexMatcher(route.pattern)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", util.ErrInvalidPattern, route.pattern, err)
		}
		route.matcher = matcher
		route.priority = priorityRegexMatch
		return nil
	}

	if !strings.HasPrefix(route.pattern, "/") {
		return fmt.Errorf("%w: %q must start with /", util.ErrInvalidPattern, route.pattern)
	}

	if route.kind == matchPrefix {
		route.matcher = NewPrefixMatcher(route.pattern)
		route.priority = priorityPrefixMatch + len(route.pattern)
		return nil
	}

	switch {
	case HasTemplateVariables(route.pattern):
		matcher, err := NewTemplateMatcher(route.pattern)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", util.ErrInvalidPattern, route.pattern, err)
		}
		route.matcher = matcher
		route.priority = priorityTemplateMatch
	case HasWildcards(route.pattern):
		matcher, err := NewWildcardMatcher(route.pattern)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", util.ErrInvalidPattern, route.pattern, err)
		}
		route.matcher = matcher
		route.priority = priorityWildcardMatch
	default:
		route.matcher = NewExactMatcher(route.pattern)
		route.priority = priorityExactMatch
	}

	return nil
}

// restrictionPriority is the specificity bonus for route restrictions.
func (m *PatternMapping) restrictionPriority(route *patternRoute) int {
	priority := 0
	if len(route.methods) > 0 && !route.methods["*"] {
		priority += priorityMethodRestriction
	}
	priority += len(route.produces) * priorityProducesRestriction
	return priority
}

// Match implements HandlerMapping. On success it records the full match
// metadata attribute set before returning the chain.
func (m *PatternMapping) Match(rc *request.Context) (*dispatch.ExecutionChain, bool, error) {
	cleanPath, segVars := splitMatrixSegments(rc.Path())

	for _, route := range m.routes {
		if !route.matchMethod(rc.Method()) {
			continue
		}

		matched, vars := route.matcher.Match(cleanPath)
		if !matched {
			continue
		}

		m.recordMetadata(rc, route, cleanPath, vars, segVars)

		interceptors := make([]dispatch.Interceptor, 0, len(m.interceptors)+len(route.interceptors))
		interceptors = append(interceptors, m.interceptors...)
		interceptors = append(interceptors, route.interceptors...)

		chain := dispatch.NewExecutionChain(route.handler, interceptors,
			dispatch.WithChainLogger(m.logger))
		return chain, true, nil
	}

	return nil, false, nil
}

// matchMethod checks the route's method restriction.
func (r *patternRoute) matchMethod(method string) bool {
	if len(r.methods) == 0 || r.methods["*"] {
		return true
	}
	if method == "HEAD" && r.methods["GET"] {
		return true
	}
	return r.methods[method]
}

// recordMetadata populates the match metadata attributes on the request
// context.
func (m *PatternMapping) recordMetadata(
	rc *request.Context,
	route *patternRoute,
	cleanPath string,
	vars map[string]string,
	segVars []url.Values,
) {
	rc.Set(request.AttrLookupPath, rc.Path())
	rc.Set(request.AttrBestMatchingHandler, route.handler)
	rc.Set(request.AttrBestMatchingPattern, route.pattern)

	if prefix, ok := route.matcher.(*PrefixMatcher); ok {
		rc.Set(request.AttrPathWithinMapping, prefix.PathWithin(cleanPath))
	} else {
		rc.Set(request.AttrPathWithinMapping, cleanPath)
	}

	if len(vars) > 0 {
		rc.Set(request.AttrURITemplateVariables, vars)
	}

	if route.matrix {
		if matrix := bindMatrixVariables(route.matcher, segVars); len(matrix) > 0 {
			rc.Set(request.AttrMatrixVariables, matrix)
		}
	}

	if len(route.produces) > 0 {
		rc.Set(request.AttrProducibleMediaTypes, append([]string(nil), route.produces...))
	}

	if route.introspect {
		rc.Set(request.AttrIntrospectTypeLevelMapping, true)
	}
}

// bindMatrixVariables groups per-segment matrix values under the
// template variable bound at each segment. Segments without a template
// variable or without matrix content contribute nothing.
func bindMatrixVariables(matcher PathMatcher, segVars []url.Values) map[string]url.Values {
	tmpl, ok := matcher.(*TemplateMatcher)
	if !ok {
		return nil
	}

	var matrix map[string]url.Values
	for i, vals := range segVars {
		if len(vals) == 0 {
			continue
		}
		name, bound := tmpl.VariableAt(i)
		if !bound {
			continue
		}
		if matrix == nil {
			matrix = make(map[string]url.Values)
		}
		matrix[name] = vals
	}

	return matrix
}
