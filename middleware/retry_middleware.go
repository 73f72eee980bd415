package middleware

import (
	"context"
	"errors"
	"syscall"
	"time"
)

// RetryMiddleware retries the next handler when it reports a transient
// failure, using exponential backoff between attempts. Retryable errors are
// those reflecting a dial/read/write failure against a backend, e.g. a
// timeout or a refused connection during the proxy's backend handshake.
func RetryMiddleware(maxRetries int, baseDelay time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, evt *PhaseEvent) *PhaseEvent {
			result := next(ctx, evt)
			for i := 0; i < maxRetries; i++ {
				if result.Err == nil {
					return result // Success, return response
				}
				if isRetryable(result.Err) {
					logger.Infow("retrying phase event",
						"attempt", i+1, "remote", evt.RemoteAddr, "phase", evt.Phase, "error", result.Err)
					time.Sleep(baseDelay * time.Duration(1<<i)) // Exponential backoff
					result = next(ctx, evt)                     // Retry the request
				} else {
					return result // Non-retryable error, return immediately
				}
			}
			return result // Return last response after retries
		}
	}
}

// isRetryable reports whether err likely reflects a transient backend
// condition worth retrying rather than a permanent protocol failure.
func isRetryable(err error) bool {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ECONNREFUSED)
}
