package interceptor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_AllowsHealthyRequests(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker("healthy", 3, time.Minute)

	for i := 0; i < 5; i++ {
		rc := newTestRC()

		proceed, err := cb.PreHandle(rc, nil)
		require.NoError(t, err)
		require.True(t, proceed)

		require.NoError(t, cb.AfterCompletion(rc, nil, nil))
	}
}

func TestCircuitBreaker_TripsOnFailures(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker("tripping", 2, time.Minute)
	failure := errors.New("backend down")

	for i := 0; i < 2; i++ {
		rc := newTestRC()

		proceed, err := cb.PreHandle(rc, nil)
		require.NoError(t, err)
		require.True(t, proceed)

		require.NoError(t, cb.AfterCompletion(rc, nil, failure))
	}

	// The breaker is open now; requests are rejected without error.
	proceed, err := cb.PreHandle(newTestRC(), nil)
	require.NoError(t, err)
	assert.False(t, proceed)
}

func TestCircuitBreaker_AfterCompletionWithoutPreHandle(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker("orphan", 2, time.Minute)

	// No done callback was stored; cleanup must still succeed.
	assert.NoError(t, cb.AfterCompletion(newTestRC(), nil, nil))
}

func TestCircuitBreaker_PostHandleIsNoOp(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker("noop", 2, time.Minute)
	assert.NoError(t, cb.PostHandle(newTestRC(), nil, nil))
}
