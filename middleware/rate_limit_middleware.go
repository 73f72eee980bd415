package middleware

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned in a short-circuited PhaseEvent when the
// token bucket has no tokens available.
var ErrRateLimited = errors.New("middleware: rate limit exceeded")

// RateLimitMiddleware creates a rate limiter using the token bucket
// algorithm. The proxy edge installs it in front of STATUS-phase handling
// to blunt status-ping scanners hammering the server list endpoint.
//
// Token bucket: tokens are added at rate r per second, up to a burst size.
// Each event consumes one token. If the bucket is empty, the event is
// rejected. Unlike a leaky bucket (constant drain rate), token bucket
// allows short bursts of traffic.
//
// CRITICAL: the limiter is created in the OUTER closure (once per middleware creation),
// NOT in the inner handler function. If created per-event, every event would get
// a fresh full bucket, defeating the entire purpose of rate limiting.
//
// Parameters:
//   - r: token refill rate (tokens per second)
//   - burst: maximum bucket size (allows this many events in a burst)
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst) // Shared across all requests
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, evt *PhaseEvent) *PhaseEvent {
			if !limiter.Allow() {
				// No tokens available — reject immediately (short-circuit, don't call next)
				return &PhaseEvent{RemoteAddr: evt.RemoteAddr, Phase: evt.Phase, Err: ErrRateLimited}
			}
			return next(ctx, evt)
		}
	}
}
