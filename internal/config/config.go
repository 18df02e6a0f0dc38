// Package config provides YAML-based startup configuration for the
// resolution layer: mapping and route definitions plus the builder that
// assembles an immutable mapping.Registry from them.
//
// Configuration is read once at process startup. There is no hot
// reload: registering or re-ordering mappings after startup is
// unsupported by design.
package config

import (
	"fmt"

	"github.com/dispatchkit/dispatchkit/internal/util"
)

// Config is the root configuration document.
type Config struct {
	Mappings []MappingConfig `yaml:"mappings"`
}

// MappingConfig defines one pattern mapping and its registry rank.
type MappingConfig struct {
	Name string `yaml:"name"`

	// Priority is the registry consultation rank; lower ranks are
	// consulted first. Omitted means lowest priority.
	Priority *int `yaml:"priority,omitempty"`

	// Interceptors names interceptors applied to every route of this
	// mapping.
	Interceptors []string `yaml:"interceptors,omitempty"`

	Routes []RouteConfig `yaml:"routes"`
}

// RouteConfig defines one route inside a mapping.
type RouteConfig struct {
	Pattern string `yaml:"pattern"`

	// Handler names the handler to look up in the handler table passed
	// to the builder.
	Handler string `yaml:"handler"`

	// Match overrides pattern interpretation: "prefix" or "regex".
	// Empty selects automatically (template, wildcard or exact).
	Match string `yaml:"match,omitempty"`

	Methods         []string `yaml:"methods,omitempty"`
	Produces        []string `yaml:"produces,omitempty"`
	MatrixVariables bool     `yaml:"matrixVariables,omitempty"`
	Introspect      bool     `yaml:"introspect,omitempty"`
	Interceptors    []string `yaml:"interceptors,omitempty"`
}

// Validate checks the configuration for structural errors.
func (c *Config) Validate() error {
	if len(c.Mappings) == 0 {
		return &util.ConfigError{Field: "mappings", Message: "at least one mapping is required"}
	}

	seen := make(map[string]bool, len(c.Mappings))
	for i, m := range c.Mappings {
		field := fmt.Sprintf("mappings[%d]", i)

		if m.Name == "" {
			return &util.ConfigError{Field: field + ".name", Message: "mapping name is required"}
		}
		if seen[m.Name] {
			return &util.ConfigError{Field: field + ".name", Message: "duplicate mapping name: " + m.Name}
		}
		seen[m.Name] = true

		if len(m.Routes) == 0 {
			return &util.ConfigError{Field: field + ".routes", Message: "at least one route is required"}
		}

		for j, r := range m.Routes {
			routeField := fmt.Sprintf("%s.routes[%d]", field, j)

			if r.Pattern == "" {
				return &util.ConfigError{Field: routeField + ".pattern", Message: "pattern is required"}
			}
			if r.Handler == "" {
				return &util.ConfigError{Field: routeField + ".handler", Message: "handler is required"}
			}
			switch r.Match {
			case "", "prefix", "regex":
			default:
				return &util.ConfigError{
					Field:   routeField + ".match",
					Message: fmt.Sprintf("unknown match kind %q (want prefix or regex)", r.Match),
				}
			}
		}
	}

	return nil
}
