package interceptor

import (
	"github.com/google/uuid"

	"github.com/dispatchkit/dispatchkit/internal/request"
)

// RequestIDHeader is the inbound header consulted for a client-supplied
// request ID.
const RequestIDHeader = "X-Request-Id"

// AttrRequestID is the attribute under which the effective request ID
// is exposed to the handler and later interceptors.
const AttrRequestID = "dispatchkit.interceptor.requestid"

// RequestID exposes a validated request ID as an attribute. A
// client-supplied ID is kept only when it parses as a UUID; otherwise
// the context's generated ID is used.
type RequestID struct{}

// NewRequestID creates a request ID interceptor.
func NewRequestID() *RequestID {
	return &RequestID{}
}

// PreHandle resolves and stores the request ID.
func (r *RequestID) PreHandle(rc *request.Context, handler any) (bool, error) {
	id := rc.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		id = rc.ID()
	}
	rc.Set(AttrRequestID, id)
	return true, nil
}

// PostHandle is a no-op.
func (r *RequestID) PostHandle(rc *request.Context, handler any, result any) error {
	return nil
}

// AfterCompletion is a no-op.
func (r *RequestID) AfterCompletion(rc *request.Context, handler any, cause error) error {
	return nil
}
