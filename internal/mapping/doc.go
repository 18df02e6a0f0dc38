// Package mapping implements request-to-handler resolution: handler
// mappings that decide whether they own a request, and the registry that
// consults them in priority order.
//
// A HandlerMapping either declines a request (a normal outcome, reported
// without an error) or produces a dispatch.ExecutionChain and records
// match metadata on the request context. The Registry holds mappings in
// a fixed priority order resolved once at construction time; it is
// immutable afterwards and safe for concurrent use without locking.
//
// Two mapping strategies ship with the package: PatternMapping matches
// URL patterns (exact, prefix, {var} templates, wildcards, regex) and
// populates the full metadata attribute set; CELMapping evaluates CEL
// predicates over the request identity and records only the subset of
// metadata it supports.
package mapping
