package middleware

import (
	"context"
	"errors"

	"golang.org/x/time/rate"

	"uffi/message"
)

// ErrRateLimited is returned when a call is rejected before spawning.
var ErrRateLimited = errors.New("uffi: rate limit exceeded")

// RateLimitMiddleware 创建一个基于令牌桶算法的限流中间件
// 被拒绝的调用不会启动子进程
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next CallFunc) CallFunc {
		return func(ctx context.Context, call *message.Call) (any, error) {
			if !limiter.Allow() {
				return nil, ErrRateLimited
			}
			return next(ctx, call)
		}
	}
}
