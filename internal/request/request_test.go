package request

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	rc := New(context.Background(), "get", "/api/users")

	assert.Equal(t, "GET", rc.Method())
	assert.Equal(t, "/api/users", rc.Path())
	assert.NotNil(t, rc.Header())
	assert.NotNil(t, rc.Query())
	assert.NotNil(t, rc.Context())

	_, err := uuid.Parse(rc.ID())
	assert.NoError(t, err, "generated request ID should be a UUID")
}

func TestNew_Options(t *testing.T) {
	t.Parallel()

	header := http.Header{"X-Custom": []string{"yes"}}
	query := url.Values{"page": []string{"2"}}

	rc := New(context.Background(), "POST", "/submit",
		WithHeader(header),
		WithQuery(query),
		WithID("req-1"),
	)

	assert.Equal(t, "req-1", rc.ID())
	assert.Equal(t, "yes", rc.Header().Get("X-Custom"))
	assert.Equal(t, "2", rc.Query().Get("page"))
}

func TestFromHTTP(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/api/orders?status=open", nil)
	r.Header.Set("Accept", "application/json")

	rc := FromHTTP(r)

	assert.Equal(t, "GET", rc.Method())
	assert.Equal(t, "/api/orders", rc.Path())
	assert.Equal(t, "open", rc.Query().Get("status"))
	assert.Equal(t, "application/json", rc.Header().Get("Accept"))
}

func TestContext_Attributes(t *testing.T) {
	t.Parallel()

	rc := New(context.Background(), "GET", "/")

	rc.Set("custom", 42)
	v, ok := rc.Get("custom")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	assert.True(t, rc.Has("custom"))
	assert.False(t, rc.Has("missing"))

	rc.Set("custom", 43)
	v, _ = rc.Get("custom")
	assert.Equal(t, 43, v, "non-namespaced attributes overwrite")

	assert.Contains(t, rc.Keys(), "custom")
}

func TestContext_MatchAttributesWriteOnce(t *testing.T) {
	t.Parallel()

	rc := New(context.Background(), "GET", "/")

	rc.Set(AttrBestMatchingPattern, "/users/{id}")
	rc.Set(AttrBestMatchingPattern, "/other")

	pattern, ok := rc.BestMatchingPattern()
	require.True(t, ok)
	assert.Equal(t, "/users/{id}", pattern, "match metadata must not be overwritten")
}

func TestContext_TypedAccessors(t *testing.T) {
	t.Parallel()

	rc := New(context.Background(), "GET", "/owners/42/pets/21")

	_, ok := rc.LookupPath()
	assert.False(t, ok)
	assert.Nil(t, rc.PathVariables())
	assert.Nil(t, rc.MatrixVariables())
	assert.Nil(t, rc.ProducibleMediaTypes())
	assert.False(t, rc.IntrospectTypeLevelMapping())

	rc.Set(AttrLookupPath, "/owners/42/pets/21")
	rc.Set(AttrBestMatchingHandler, "petHandler")
	rc.Set(AttrPathWithinMapping, "/owners/42/pets/21")
	rc.Set(AttrURITemplateVariables, map[string]string{"ownerId": "42", "petId": "21"})
	rc.Set(AttrMatrixVariables, map[string]url.Values{"ownerId": {"q": []string{"11"}}})
	rc.Set(AttrProducibleMediaTypes, []string{"application/json"})
	rc.Set(AttrIntrospectTypeLevelMapping, true)

	lookup, ok := rc.LookupPath()
	require.True(t, ok)
	assert.Equal(t, "/owners/42/pets/21", lookup)

	handler, ok := rc.BestMatchingHandler()
	require.True(t, ok)
	assert.Equal(t, "petHandler", handler)

	within, ok := rc.PathWithinMapping()
	require.True(t, ok)
	assert.Equal(t, "/owners/42/pets/21", within)

	assert.Equal(t, map[string]string{"ownerId": "42", "petId": "21"}, rc.PathVariables())
	assert.Equal(t, []string{"11"}, rc.MatrixVariables()["ownerId"]["q"])
	assert.Equal(t, []string{"application/json"}, rc.ProducibleMediaTypes())
	assert.True(t, rc.IntrospectTypeLevelMapping())
}

func TestContext_Cancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	rc := New(ctx, "GET", "/")

	cancel()

	select {
	case <-rc.Context().Done():
	default:
		t.Fatal("cancellation should propagate through the request context")
	}
}
