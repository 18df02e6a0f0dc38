package mapping

import (
	"math"

	"github.com/dispatchkit/dispatchkit/internal/dispatch"
	"github.com/dispatchkit/dispatchkit/internal/request"
)

// HandlerMapping decides whether it owns a request and, if so, produces
// the execution chain for it.
//
// A declined request is reported as (nil, false, nil); it is a normal
// outcome, never an error. An error return signals an internal fault in
// the mapping itself and aborts resolution. Implementations must not
// assume they are the only mapping consulted and must leave the request
// context untouched when they decline.
type HandlerMapping interface {
	Match(rc *request.Context) (*dispatch.ExecutionChain, bool, error)
}

// PriorityLowest is the rank assigned to mappings registered without an
// explicit priority. Lower ranks are consulted first.
const PriorityLowest = math.MaxInt
