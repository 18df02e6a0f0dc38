package dispatchkit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatchkit/dispatchkit"
)

func TestEndToEndDispatch(t *testing.T) {
	t.Parallel()

	users := dispatchkit.NewPatternMapping()
	require.NoError(t, users.Handle("/users/{id}", dispatchkit.HandlerFunc(
		func(rc *dispatchkit.Request) (any, error) {
			return "user:" + rc.PathVariables()["id"], nil
		},
	), dispatchkit.WithMethods("GET")))

	registry := dispatchkit.NewRegistryBuilder().
		AddWithPriority(users, 1).
		Build()

	d := dispatchkit.NewDispatcher(registry)

	rc := dispatchkit.NewRequest(context.Background(), "GET", "/users/42")
	result, found, err := d.Dispatch(rc)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "user:42", result)

	rc = dispatchkit.NewRequest(context.Background(), "GET", "/orders/7")
	result, found, err = d.Dispatch(rc)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, result)
}
