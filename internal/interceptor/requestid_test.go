package interceptor

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatchkit/dispatchkit/internal/request"
)

func TestRequestID_KeepsValidClientID(t *testing.T) {
	t.Parallel()

	header := http.Header{}
	header.Set(RequestIDHeader, "a2d8f2ce-16a6-4a82-bbf8-d1cbd68b8d2a")

	rc := request.New(context.Background(), "GET", "/test", request.WithHeader(header))

	proceed, err := NewRequestID().PreHandle(rc, nil)
	require.NoError(t, err)
	assert.True(t, proceed)

	id, ok := rc.Get(AttrRequestID)
	require.True(t, ok)
	assert.Equal(t, "a2d8f2ce-16a6-4a82-bbf8-d1cbd68b8d2a", id)
}

func TestRequestID_RejectsInvalidClientID(t *testing.T) {
	t.Parallel()

	header := http.Header{}
	header.Set(RequestIDHeader, "not-a-uuid")

	rc := request.New(context.Background(), "GET", "/test", request.WithHeader(header))

	_, err := NewRequestID().PreHandle(rc, nil)
	require.NoError(t, err)

	id, ok := rc.Get(AttrRequestID)
	require.True(t, ok)
	assert.Equal(t, rc.ID(), id, "an unparseable client ID falls back to the generated one")
}

func TestRequestID_NoHeader(t *testing.T) {
	t.Parallel()

	rc := request.New(context.Background(), "GET", "/test")

	_, err := NewRequestID().PreHandle(rc, nil)
	require.NoError(t, err)

	id, ok := rc.Get(AttrRequestID)
	require.True(t, ok)
	assert.Equal(t, rc.ID(), id)
}
