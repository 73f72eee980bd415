// Package middleware implements the onion-model middleware chain the
// proxy edge and server wrap around connection-lifecycle events.
//
// Onion model execution order:
//
//	Chain(A, B, C)(handler)  →  A(B(C(handler)))
//
//	Request:   A.before → B.before → C.before → handler
//	Response:  handler → C.after → B.after → A.after
//
// Each middleware can:
//   - Do pre-processing (before calling next)
//   - Call next(ctx, event) to pass to the next layer
//   - Do post-processing (after next returns)
//   - Short-circuit by returning early without calling next (e.g., rate limiting)
package middleware

import (
	"context"

	"mcproto/packetid"
)

// PhaseEvent describes one connection-lifecycle event the proxy edge routes
// through the middleware chain: a phase transition, a backend dial, or a
// relayed packet, depending on which stage of the proxy installed the
// chain. Err carries a handler's failure back out through the chain.
type PhaseEvent struct {
	RemoteAddr string
	Phase      packetid.Phase
	PacketName string
	Err        error
}

// HandlerFunc is the function signature for phase-event handlers. Both the
// business handler and middleware-wrapped handlers share this signature.
type HandlerFunc func(ctx context.Context, evt *PhaseEvent) *PhaseEvent

// Middleware takes a handler and returns a new handler that wraps it.
// This is the decorator pattern — each middleware adds behavior around the next handler.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes multiple middlewares into a single middleware.
// It builds the chain from right to left so that the first middleware in the list
// is the outermost layer (executed first on request, last on response).
//
// Example:
//
//	chain := Chain(Logging, Timeout, RateLimit)
//	handler := chain(businessHandler)
//	// Execution: Logging → Timeout → RateLimit → businessHandler → RateLimit → Timeout → Logging
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		// Build from right to left: wrap innermost first
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
