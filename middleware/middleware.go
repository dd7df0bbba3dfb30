// Package middleware wraps invoker calls with cross-cutting behavior such as
// logging, deadlines and rate limiting.
package middleware

import (
	"context"

	"uffi/message"
)

// CallFunc performs one out-of-process call and returns its decoded result.
type CallFunc func(ctx context.Context, call *message.Call) (any, error)

type Middleware func(next CallFunc) CallFunc

// Chain 将多个中间件组合成一个中间件
func Chain(middlewares ...Middleware) Middleware {
	return func(next CallFunc) CallFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
