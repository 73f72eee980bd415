package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"
)

var logger = zap.Must(zap.NewProduction()).Sugar()

// LoggingMiddleware records the remote address, phase, and any errors for
// each proxied connection event. It captures the start time before calling
// next, and logs the elapsed time after next returns.
func LoggingMiddleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, evt *PhaseEvent) *PhaseEvent {
			start := time.Now()

			result := next(ctx, evt)

			duration := time.Since(start)
			logger.Infow("phase event",
				"remote", evt.RemoteAddr, "phase", evt.Phase, "packet", evt.PacketName, "duration", duration)
			if result.Err != nil {
				logger.Warnw("phase event failed", "remote", evt.RemoteAddr, "error", result.Err)
			}
			return result
		}
	}
}
