package interceptor

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dispatchkit/dispatchkit/internal/request"
)

// attrTracingSpan carries the active span between hooks.
const attrTracingSpan = "dispatchkit.interceptor.tracing.span"

// Tracing opens a span per dispatched request and closes it in the
// cleanup phase so cancelled and failed requests still end their spans.
type Tracing struct {
	tracer trace.Tracer
}

// NewTracing creates a tracing interceptor using the given tracer, or
// the globally registered one when tracer is nil.
func NewTracing(tracer trace.Tracer) *Tracing {
	if tracer == nil {
		tracer = otel.Tracer("dispatchkit/dispatch")
	}
	return &Tracing{tracer: tracer}
}

// PreHandle starts the dispatch span.
func (t *Tracing) PreHandle(rc *request.Context, handler any) (bool, error) {
	_, span := t.tracer.Start(rc.Context(), "dispatch",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("http.method", rc.Method()),
			attribute.String("http.target", rc.Path()),
			attribute.String("request.id", rc.ID()),
		),
	)

	rc.Set(attrTracingSpan, span)
	return true, nil
}

// PostHandle is a no-op; span closure happens in AfterCompletion.
func (t *Tracing) PostHandle(rc *request.Context, handler any, result any) error {
	return nil
}

// AfterCompletion annotates and ends the span.
func (t *Tracing) AfterCompletion(rc *request.Context, handler any, cause error) error {
	v, ok := rc.Get(attrTracingSpan)
	if !ok {
		return nil
	}
	span, ok := v.(trace.Span)
	if !ok {
		return nil
	}

	if pattern, matched := rc.BestMatchingPattern(); matched {
		span.SetAttributes(attribute.String("http.route", pattern))
	}

	if cause != nil {
		span.RecordError(cause)
		span.SetStatus(codes.Error, cause.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
	return nil
}
