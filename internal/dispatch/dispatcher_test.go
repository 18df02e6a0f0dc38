package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatchkit/dispatchkit/internal/request"
)

// stubResolver returns a fixed resolution outcome and optionally
// records match metadata first.
type stubResolver struct {
	chain *ExecutionChain
	found bool
	err   error
	attrs map[string]any
}

func (s *stubResolver) Resolve(rc *request.Context) (*ExecutionChain, bool, error) {
	for k, v := range s.attrs {
		rc.Set(k, v)
	}
	return s.chain, s.found, s.err
}

func TestDispatcher_Success(t *testing.T) {
	t.Parallel()

	var log []string
	a := &recordingInterceptor{name: "A", log: &log, preResult: true}
	b := &recordingInterceptor{name: "B", log: &log, preResult: true}

	handler := HandlerFunc(func(rc *request.Context) (any, error) {
		log = append(log, "handler")
		return "payload", nil
	})

	d := NewDispatcher(&stubResolver{
		chain: NewExecutionChain(handler, []Interceptor{a, b}),
		found: true,
	})

	result, found, err := d.Dispatch(newRC())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "payload", result)
	assert.Equal(t, []string{"preA", "preB", "handler", "postB", "postA", "afterB", "afterA"}, log)
}

func TestDispatcher_NoMatch(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(&stubResolver{})

	result, found, err := d.Dispatch(newRC())
	require.NoError(t, err, "no match is a normal outcome, not an error")
	assert.False(t, found)
	assert.Nil(t, result)
}

func TestDispatcher_ResolverError(t *testing.T) {
	t.Parallel()

	resolveErr := errors.New("matcher state corrupt")
	d := NewDispatcher(&stubResolver{err: resolveErr})

	_, found, err := d.Dispatch(newRC())
	assert.ErrorIs(t, err, resolveErr)
	assert.False(t, found)
}

func TestDispatcher_ShortCircuit(t *testing.T) {
	t.Parallel()

	var log []string
	a := &recordingInterceptor{name: "A", log: &log, preResult: false}

	handler := HandlerFunc(func(rc *request.Context) (any, error) {
		log = append(log, "handler")
		return nil, nil
	})

	d := NewDispatcher(&stubResolver{
		chain: NewExecutionChain(handler, []Interceptor{a}),
		found: true,
	})

	result, found, err := d.Dispatch(newRC())
	require.NoError(t, err)
	assert.True(t, found, "the request matched even though it was rejected")
	assert.Nil(t, result)
	assert.Equal(t, []string{"preA", "afterA"}, log, "handler must not run")
}

func TestDispatcher_HandlerError(t *testing.T) {
	t.Parallel()

	var log []string
	var afterCause error
	a := &recordingInterceptor{name: "A", log: &log, preResult: true}

	handlerErr := errors.New("handler exploded")
	handler := HandlerFunc(func(rc *request.Context) (any, error) {
		return nil, handlerErr
	})

	causeCapture := interceptorFunc{
		pre: func(rc *request.Context, h any) (bool, error) { return true, nil },
		after: func(rc *request.Context, h any, cause error) error {
			afterCause = cause
			return nil
		},
	}

	d := NewDispatcher(&stubResolver{
		chain: NewExecutionChain(handler, []Interceptor{a, causeCapture}),
		found: true,
	})

	result, found, err := d.Dispatch(newRC())
	assert.ErrorIs(t, err, handlerErr)
	assert.True(t, found)
	assert.Nil(t, result)
	assert.ErrorIs(t, afterCause, handlerErr, "cleanup observes the handler error")
	assert.Equal(t, []string{"preA", "afterA"}, log, "post-hooks are skipped on handler failure")
}

func TestDispatcher_HandlerPanic(t *testing.T) {
	t.Parallel()

	var log []string
	a := &recordingInterceptor{name: "A", log: &log, preResult: true}

	handler := HandlerFunc(func(rc *request.Context) (any, error) {
		panic("kaboom")
	})

	d := NewDispatcher(&stubResolver{
		chain: NewExecutionChain(handler, []Interceptor{a}),
		found: true,
	})

	result, found, err := d.Dispatch(newRC())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
	assert.True(t, found)
	assert.Nil(t, result)
	assert.Equal(t, []string{"preA", "afterA"}, log, "cleanup runs even on panic")
}

func TestDispatcher_UnsupportedHandler(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(&stubResolver{
		chain: NewExecutionChain(struct{}{}, nil),
		found: true,
	})

	_, found, err := d.Dispatch(newRC())
	assert.Error(t, err)
	assert.True(t, found)
}

func TestDispatcher_MetadataVisibleToHandlerAndHooks(t *testing.T) {
	t.Parallel()

	var handlerSaw, hookSaw string

	handler := HandlerFunc(func(rc *request.Context) (any, error) {
		handlerSaw, _ = rc.BestMatchingPattern()
		return nil, nil
	})

	observer := interceptorFunc{
		pre: func(rc *request.Context, h any) (bool, error) {
			hookSaw, _ = rc.BestMatchingPattern()
			return true, nil
		},
	}

	d := NewDispatcher(&stubResolver{
		chain: NewExecutionChain(handler, []Interceptor{observer}),
		found: true,
		attrs: map[string]any{request.AttrBestMatchingPattern: "/users/{id}"},
	})

	_, _, err := d.Dispatch(newRC())
	require.NoError(t, err)
	assert.Equal(t, "/users/{id}", handlerSaw)
	assert.Equal(t, "/users/{id}", hookSaw)
}

// interceptorFunc builds an interceptor from optional hook funcs.
type interceptorFunc struct {
	pre   func(rc *request.Context, handler any) (bool, error)
	post  func(rc *request.Context, handler any, result any) error
	after func(rc *request.Context, handler any, cause error) error
}

func (f interceptorFunc) PreHandle(rc *request.Context, handler any) (bool, error) {
	if f.pre == nil {
		return true, nil
	}
	return f.pre(rc, handler)
}

func (f interceptorFunc) PostHandle(rc *request.Context, handler any, result any) error {
	if f.post == nil {
		return nil
	}
	return f.post(rc, handler, result)
}

func (f interceptorFunc) AfterCompletion(rc *request.Context, handler any, cause error) error {
	if f.after == nil {
		return nil
	}
	return f.after(rc, handler, cause)
}
