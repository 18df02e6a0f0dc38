package interceptor

import (
	"time"

	"github.com/dispatchkit/dispatchkit/internal/observability"
	"github.com/dispatchkit/dispatchkit/internal/request"
)

// attrLoggingStart holds the request start time between hooks.
const attrLoggingStart = "dispatchkit.interceptor.logging.start"

// Logging logs the outcome and latency of every dispatched request.
type Logging struct {
	logger observability.Logger
}

// NewLogging creates a logging interceptor.
func NewLogging(logger observability.Logger) *Logging {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Logging{logger: logger}
}

// PreHandle records the start time.
func (l *Logging) PreHandle(rc *request.Context, handler any) (bool, error) {
	rc.Set(attrLoggingStart, time.Now())
	return true, nil
}

// PostHandle is a no-op; the outcome is logged in AfterCompletion so
// short-circuited and failed requests are covered too.
func (l *Logging) PostHandle(rc *request.Context, handler any, result any) error {
	return nil
}

// AfterCompletion logs the request outcome.
func (l *Logging) AfterCompletion(rc *request.Context, handler any, cause error) error {
	fields := []observability.Field{
		observability.String("request_id", rc.ID()),
		observability.String("method", rc.Method()),
		observability.String("path", rc.Path()),
	}

	if pattern, ok := rc.BestMatchingPattern(); ok {
		fields = append(fields, observability.String("pattern", pattern))
	}
	if start, ok := rc.Get(attrLoggingStart); ok {
		if t, ok := start.(time.Time); ok {
			fields = append(fields, observability.Duration("duration", time.Since(t)))
		}
	}

	if cause != nil {
		fields = append(fields, observability.Error(cause))
		l.logger.Error("request failed", fields...)
		return nil
	}

	l.logger.Info("request completed", fields...)
	return nil
}
