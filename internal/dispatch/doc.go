// Package dispatch implements the execution side of request resolution:
// the interceptor contract, the execution chain produced by a successful
// match, the handler adapter registry, and the dispatcher that drives
// the invocation protocol.
//
// # Invocation Protocol
//
// For every resolved chain the dispatcher runs:
//
//	pre-hooks (registration order) → handler → post-hooks (reverse order)
//
// followed, on every exit path, by the after-completion hooks of all
// interceptors whose pre-hook was invoked, in reverse order of pre-hook
// execution. A pre-hook returning false short-circuits the request: the
// handler, the remaining pre-hooks, and all post-hooks are skipped, but
// the cleanup phase still runs. Errors from cleanup hooks are isolated
// per interceptor; sibling cleanups always run.
//
// Handlers are opaque references. The dispatcher resolves how to invoke
// one through a registry of HandlerAdapter implementations, so handler
// shapes are not constrained by this package.
package dispatch
