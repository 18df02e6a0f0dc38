package mapping

import (
	"sort"
	"time"

	"github.com/dispatchkit/dispatchkit/internal/dispatch"
	"github.com/dispatchkit/dispatchkit/internal/observability"
	"github.com/dispatchkit/dispatchkit/internal/request"
)

// rankedMapping pairs a mapping with its priority rank.
type rankedMapping struct {
	mapping  HandlerMapping
	priority int
}

// RegistryBuilder accumulates handler mappings before the priority order
// is fixed. Build sorts once; the resulting Registry never changes.
type RegistryBuilder struct {
	entries []rankedMapping
	logger  observability.Logger
}

// NewRegistryBuilder creates an empty registry builder.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{
		logger: observability.NopLogger(),
	}
}

// WithLogger sets the logger for the built registry.
func (b *RegistryBuilder) WithLogger(logger observability.Logger) *RegistryBuilder {
	b.logger = logger
	return b
}

// Add registers a mapping without an explicit rank, equivalent to the
// lowest possible priority.
func (b *RegistryBuilder) Add(m HandlerMapping) *RegistryBuilder {
	return b.AddWithPriority(m, PriorityLowest)
}

// AddWithPriority registers a mapping with an explicit rank. Lower
// ranks are consulted first; mappings with equal ranks keep their
// registration order.
func (b *RegistryBuilder) AddWithPriority(m HandlerMapping, priority int) *RegistryBuilder {
	b.entries = append(b.entries, rankedMapping{mapping: m, priority: priority})
	return b
}

// Build resolves the priority order into a fixed sequence and returns
// the immutable registry. The builder must not be reused afterwards.
func (b *RegistryBuilder) Build() *Registry {
	entries := append([]rankedMapping(nil), b.entries...)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].priority < entries[j].priority
	})

	mappings := make([]HandlerMapping, len(entries))
	for i, e := range entries {
		mappings[i] = e.mapping
	}

	return &Registry{
		mappings: mappings,
		logger:   b.logger,
		metrics:  getResolutionMetrics(),
	}
}

// Registry holds handler mappings in a fixed priority order. It is
// constructed once at startup and read concurrently by request-handling
// goroutines without synchronization.
type Registry struct {
	mappings []HandlerMapping
	logger   observability.Logger
	metrics  *resolutionMetrics
}

// Len returns the number of registered mappings.
func (r *Registry) Len() int {
	return len(r.mappings)
}

// Resolve consults the mappings in priority order and returns the first
// execution chain produced. When every mapping declines it returns
// (nil, false, nil); that is a normal terminal outcome. An internal
// error from a mapping propagates immediately and no lower-priority
// mapping is consulted.
func (r *Registry) Resolve(rc *request.Context) (*dispatch.ExecutionChain, bool, error) {
	start := time.Now()
	defer func() {
		r.metrics.duration.Observe(time.Since(start).Seconds())
	}()

	for _, m := range r.mappings {
		chain, ok, err := m.Match(rc)
		if err != nil {
			r.metrics.errored.Inc()
			r.logger.Error("handler mapping failed",
				observability.String("request_id", rc.ID()),
				observability.String("method", rc.Method()),
				observability.String("path", rc.Path()),
				observability.Error(err),
			)
			return nil, false, err
		}
		if ok {
			r.metrics.matched.Inc()
			r.logger.Debug("request resolved",
				observability.String("request_id", rc.ID()),
				observability.String("method", rc.Method()),
				observability.String("path", rc.Path()),
			)
			return chain, true, nil
		}
	}

	r.metrics.unmatched.Inc()
	return nil, false, nil
}
