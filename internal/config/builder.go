package config

import (
	"fmt"

	"github.com/dispatchkit/dispatchkit/internal/dispatch"
	"github.com/dispatchkit/dispatchkit/internal/mapping"
	"github.com/dispatchkit/dispatchkit/internal/observability"
	"github.com/dispatchkit/dispatchkit/internal/util"
)

// Builder assembles a mapping.Registry from configuration plus the
// runtime tables the configuration refers to by name.
type Builder struct {
	handlers     map[string]any
	interceptors map[string]dispatch.Interceptor
	logger       observability.Logger
}

// BuilderOption is a functional option for configuring the builder.
type BuilderOption func(*Builder)

// WithBuilderLogger sets the logger passed to the built mappings and
// registry.
func WithBuilderLogger(logger observability.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a registry builder. handlers maps configured
// handler names to handler references; interceptors maps configured
// interceptor names to instances.
func NewBuilder(handlers map[string]any, interceptors map[string]dispatch.Interceptor, opts ...BuilderOption) *Builder {
	b := &Builder{
		handlers:     handlers,
		interceptors: interceptors,
		logger:       observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Build constructs the immutable registry described by cfg.
func (b *Builder) Build(cfg *Config) (*mapping.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry := mapping.NewRegistryBuilder().WithLogger(b.logger)

	for _, mc := range cfg.Mappings {
		m, err := b.buildMapping(mc)
		if err != nil {
			return nil, err
		}

		if mc.Priority != nil {
			registry.AddWithPriority(m, *mc.Priority)
		} else {
			registry.Add(m)
		}
	}

	return registry.Build(), nil
}

// buildMapping constructs one pattern mapping from its configuration.
func (b *Builder) buildMapping(mc MappingConfig) (*mapping.PatternMapping, error) {
	global, err := b.resolveInterceptors(mc.Name, mc.Interceptors)
	if err != nil {
		return nil, err
	}

	m := mapping.NewPatternMapping(
		mapping.WithName(mc.Name),
		mapping.WithInterceptors(global...),
		mapping.WithMappingLogger(b.logger),
	)

	for _, rc := range mc.Routes {
		handler, ok := b.handlers[rc.Handler]
		if !ok {
			return nil, &util.ConfigError{
				Field:   fmt.Sprintf("mapping %s route %s", mc.Name, rc.Pattern),
				Message: "unknown handler: " + rc.Handler,
			}
		}

		opts, err := b.routeOptions(mc.Name, rc)
		if err != nil {
			return nil, err
		}

		if err := m.Handle(rc.Pattern, handler, opts...); err != nil {
			return nil, &util.ConfigError{
				Field:   fmt.Sprintf("mapping %s route %s", mc.Name, rc.Pattern),
				Message: "invalid route",
				Cause:   err,
			}
		}
	}

	return m, nil
}

// routeOptions translates a route configuration into mapping options.
func (b *Builder) routeOptions(mappingName string, rc RouteConfig) ([]mapping.RouteOption, error) {
	var opts []mapping.RouteOption

	switch rc.Match {
	case "prefix":
		opts = append(opts, mapping.WithPrefixMatch())
	case "regex":
		opts = append(opts, mapping.WithRegexMatch())
	}

	if len(rc.Methods) > 0 {
		opts = append(opts, mapping.WithMethods(rc.Methods...))
	}
	if len(rc.Produces) > 0 {
		opts = append(opts, mapping.WithProduces(rc.Produces...))
	}
	if rc.MatrixVariables {
		opts = append(opts, mapping.WithMatrixVariables())
	}
	if rc.Introspect {
		opts = append(opts, mapping.WithIntrospection())
	}

	if len(rc.Interceptors) > 0 {
		local, err := b.resolveInterceptors(mappingName, rc.Interceptors)
		if err != nil {
			return nil, err
		}
		opts = append(opts, mapping.WithRouteInterceptors(local...))
	}

	return opts, nil
}

// resolveInterceptors looks up configured interceptor names.
func (b *Builder) resolveInterceptors(mappingName string, names []string) ([]dispatch.Interceptor, error) {
	interceptors := make([]dispatch.Interceptor, 0, len(names))
	for _, name := range names {
		ic, ok := b.interceptors[name]
		if !ok {
			return nil, &util.ConfigError{
				Field:   "mapping " + mappingName,
				Message: "unknown interceptor: " + name,
			}
		}
		interceptors = append(interceptors, ic)
	}
	return interceptors, nil
}
