package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"

	"uffi/message"
)

// LoggingMiddleware records the command, endpoint and duration of every call.
func LoggingMiddleware(log *zap.Logger) Middleware {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next CallFunc) CallFunc {
		return func(ctx context.Context, call *message.Call) (any, error) {
			start := time.Now()
			result, err := next(ctx, call)

			fields := []zap.Field{
				zap.String("command", call.Command),
				zap.Int("args", len(call.Args)),
				zap.String("endpoint", call.Endpoint),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				log.Warn("call failed", append(fields, zap.Error(err))...)
				return nil, err
			}
			log.Info("call completed", fields...)
			return result, nil
		}
	}
}
