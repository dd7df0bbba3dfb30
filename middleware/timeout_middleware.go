package middleware

import (
	"context"
	"time"

	"uffi/message"
)

// TimeOutMiddleware bounds each call by timeout. The invoker honors the
// context, so the endpoint is still cleaned up when the deadline fires.
func TimeOutMiddleware(timeout time.Duration) Middleware {
	return func(next CallFunc) CallFunc {
		if timeout <= 0 {
			return next
		}
		return func(ctx context.Context, call *message.Call) (any, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(ctx, call)
		}
	}
}
