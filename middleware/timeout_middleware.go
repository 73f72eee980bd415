package middleware

import (
	"context"
	"errors"
	"time"
)

// ErrTimedOut is returned in a short-circuited PhaseEvent when the next
// handler doesn't complete within the configured timeout.
var ErrTimedOut = errors.New("middleware: phase event timed out")

// TimeoutMiddleware enforces a maximum duration for each phase event.
// If the handler doesn't complete within the timeout, it returns an error immediately.
//
// Implementation:
//  1. Create a context with timeout (ctx.Done() fires when timeout expires)
//  2. Run the next handler in a goroutine, sending its result to a channel
//  3. Select between the result channel and ctx.Done()
//
// Note: the handler goroutine is NOT cancelled — it continues running in the background.
// The timeout only controls when the caller gives up waiting. For true cancellation,
// the handler must check ctx.Done() internally.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, evt *PhaseEvent) *PhaseEvent {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			// Run handler in a goroutine so we can race it against the timeout
			done := make(chan *PhaseEvent, 1) // Buffered: prevent goroutine leak if timeout fires
			go func() {
				done <- next(ctx, evt)
			}()

			select {
			case result := <-done:
				return result // Handler completed before timeout
			case <-ctx.Done():
				return &PhaseEvent{RemoteAddr: evt.RemoteAddr, Phase: evt.Phase, Err: ErrTimedOut}
			}
		}
	}
}
