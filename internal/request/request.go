// Package request provides the per-request context object passed through
// the match and dispatch path.
//
// A Context carries the request identity (method, path, headers, query),
// a cancellation context supplied by the transport, and a mutable
// attribute bag scoped to one request. Handler mappings record match
// metadata in the bag under the dispatchkit.mapping namespace; those
// attributes are write-once so that nothing running later in the request
// can clobber what the matching phase recorded.
//
// A Context is owned by exactly one request-handling goroutine and is not
// safe for concurrent use.
package request

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Context is the per-request state threaded through matching and dispatch.
type Context struct {
	ctx    context.Context
	id     string
	method string
	path   string
	header http.Header
	query  url.Values
	attrs  map[string]any
}

// Option is a functional option for constructing a Context.
type Option func(*Context)

// WithHeader sets the request headers.
func WithHeader(h http.Header) Option {
	return func(c *Context) {
		c.header = h
	}
}

// WithQuery sets the request query parameters.
func WithQuery(q url.Values) Option {
	return func(c *Context) {
		c.query = q
	}
}

// WithID sets an explicit request ID instead of a generated one.
func WithID(id string) Option {
	return func(c *Context) {
		c.id = id
	}
}

// New creates a request context. The supplied context.Context carries
// cancellation from the transport; it must not be nil.
func New(ctx context.Context, method, path string, opts ...Option) *Context {
	c := &Context{
		ctx:    ctx,
		method: strings.ToUpper(method),
		path:   path,
		attrs:  make(map[string]any),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.id == "" {
		c.id = uuid.NewString()
	}
	if c.header == nil {
		c.header = make(http.Header)
	}
	if c.query == nil {
		c.query = make(url.Values)
	}

	return c
}

// FromHTTP builds a request context from an already-parsed stdlib request.
// This is the boundary helper for net/http based transports; the layer
// itself never touches raw bytes.
func FromHTTP(r *http.Request) *Context {
	return New(r.Context(), r.Method, r.URL.Path,
		WithHeader(r.Header),
		WithQuery(r.URL.Query()),
	)
}

// Context returns the cancellation context supplied by the transport.
func (c *Context) Context() context.Context {
	return c.ctx
}

// ID returns the request ID.
func (c *Context) ID() string {
	return c.id
}

// Method returns the HTTP method, upper-cased.
func (c *Context) Method() string {
	return c.method
}

// Path returns the request path used for matching.
func (c *Context) Path() string {
	return c.path
}

// Header returns the request headers.
func (c *Context) Header() http.Header {
	return c.header
}

// Query returns the request query parameters.
func (c *Context) Query() url.Values {
	return c.query
}

// Set stores an attribute. Attributes under the match-metadata namespace
// are write-once: once a mapping has recorded them, later writes are
// ignored. All other keys overwrite normally.
func (c *Context) Set(key string, value any) {
	if strings.HasPrefix(key, MatchAttrPrefix) {
		if _, exists := c.attrs[key]; exists {
			return
		}
	}
	c.attrs[key] = value
}

// Get returns an attribute value and whether it is present.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.attrs[key]
	return v, ok
}

// Has reports whether an attribute is present.
func (c *Context) Has(key string) bool {
	_, ok := c.attrs[key]
	return ok
}

// Keys returns the names of all stored attributes.
func (c *Context) Keys() []string {
	keys := make([]string, 0, len(c.attrs))
	for k := range c.attrs {
		keys = append(keys, k)
	}
	return keys
}
