// Package dispatchkit resolves HTTP requests to handlers.
//
// A request travels through three stages: a Registry of handler mappings
// is consulted in priority order, the first mapping that matches yields
// an ExecutionChain of interceptors around an opaque handler, and the
// Dispatcher drives the chain's pre, handler, post and after-completion
// phases with guaranteed cleanup on every exit path.
//
// The package re-exports the types needed to assemble and drive the
// layer; the implementation lives in the internal packages.
package dispatchkit

import (
	"github.com/dispatchkit/dispatchkit/internal/config"
	"github.com/dispatchkit/dispatchkit/internal/dispatch"
	"github.com/dispatchkit/dispatchkit/internal/mapping"
	"github.com/dispatchkit/dispatchkit/internal/observability"
	"github.com/dispatchkit/dispatchkit/internal/request"
)

// Request context and match metadata.
type (
	Request       = request.Context
	RequestOption = request.Option
)

// New creates a request context; see request.New.
var (
	NewRequest    = request.New
	FromHTTP      = request.FromHTTP
	WithHeader    = request.WithHeader
	WithQuery     = request.WithQuery
	WithRequestID = request.WithID
)

// Interceptor protocol and chain execution.
type (
	Interceptor     = dispatch.Interceptor
	ExecutionChain  = dispatch.ExecutionChain
	HandlerFunc     = dispatch.HandlerFunc
	HandlerAdapter  = dispatch.HandlerAdapter
	AdapterRegistry = dispatch.AdapterRegistry
	Dispatcher      = dispatch.Dispatcher
	Resolver        = dispatch.Resolver
)

var (
	NewExecutionChain  = dispatch.NewExecutionChain
	NewAdapterRegistry = dispatch.NewAdapterRegistry
	NewDispatcher      = dispatch.NewDispatcher
	WithAdapters       = dispatch.WithAdapters
)

// Handler mappings and the registry.
type (
	HandlerMapping  = mapping.HandlerMapping
	Registry        = mapping.Registry
	RegistryBuilder = mapping.RegistryBuilder
	PatternMapping  = mapping.PatternMapping
	CELMapping      = mapping.CELMapping
	RouteOption     = mapping.RouteOption
)

var (
	NewRegistryBuilder  = mapping.NewRegistryBuilder
	NewPatternMapping   = mapping.NewPatternMapping
	NewCELMapping       = mapping.NewCELMapping
	WithMethods         = mapping.WithMethods
	WithProduces        = mapping.WithProduces
	WithPrefixMatch     = mapping.WithPrefixMatch
	WithRegexMatch      = mapping.WithRegexMatch
	WithMatrixVariables = mapping.WithMatrixVariables
)

// Configuration-driven assembly.
type (
	Config        = config.Config
	ConfigBuilder = config.Builder
)

var (
	LoadConfig           = config.Load
	LoadConfigFromReader = config.LoadFromReader
	NewConfigBuilder     = config.NewBuilder
)

// Logging.
type (
	Logger    = observability.Logger
	LogConfig = observability.LogConfig
)

var (
	NewLogger = observability.NewLogger
	NopLogger = observability.NopLogger
)
