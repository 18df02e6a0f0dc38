// Package interceptor provides built-in interceptors for the dispatch
// chain.
//
// Every interceptor implements the three-hook dispatch.Interceptor
// contract. Short-circuiting interceptors (rate limit, circuit breaker,
// auth) reject requests by returning false from PreHandle, which is a
// normal control-flow outcome rather than an error; cleanup-oriented
// interceptors (logging, tracing, metrics) do their accounting in
// AfterCompletion so it runs on every exit path, including handler
// failures and client cancellation.
package interceptor
