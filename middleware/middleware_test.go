package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"uffi/message"
)

// 模拟一个简单的 call：直接返回参数
func echoCall(ctx context.Context, call *message.Call) (any, error) {
	return call.Args, nil
}

// 模拟一个慢 call：等待 ctx 结束或 200ms
func slowCall(ctx context.Context, call *message.Call) (any, error) {
	select {
	case <-time.After(200 * time.Millisecond):
		return "late", nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func failingCall(ctx context.Context, call *message.Call) (any, error) {
	return nil, errors.New("spawn failed")
}

func newCall() *message.Call {
	return &message.Call{Command: "echo_uffi", Args: []any{int64(1)}, Endpoint: "/tmp/uffi_1.sock"}
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := LoggingMiddleware(zap.New(core))(echoCall)

	got, err := handler(context.Background(), newCall())
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1)}, got)

	entries := logs.FilterMessage("call completed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "echo_uffi", entries[0].ContextMap()["command"])
}

func TestLoggingFailure(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := LoggingMiddleware(zap.New(core))(failingCall)

	_, err := handler(context.Background(), newCall())
	assert.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("call failed").Len())
}

func TestTimeoutPass(t *testing.T) {
	// 超时 500ms，call 很快，应该正常返回
	handler := TimeOutMiddleware(500 * time.Millisecond)(echoCall)
	_, err := handler(context.Background(), newCall())
	assert.NoError(t, err)
}

func TestTimeoutExceeded(t *testing.T) {
	// 超时 50ms，call 需要 200ms，应该超时
	handler := TimeOutMiddleware(50 * time.Millisecond)(slowCall)
	_, err := handler(context.Background(), newCall())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTimeoutDisabled(t *testing.T) {
	handler := TimeOutMiddleware(0)(slowCall)
	got, err := handler(context.Background(), newCall())
	require.NoError(t, err)
	assert.Equal(t, "late", got)
}

func TestRateLimit(t *testing.T) {
	// rate=1 per second, burst=2 → 前 2 个立刻放行，第 3 个被拒
	handler := RateLimitMiddleware(1, 2)(echoCall)
	for i := 0; i < 2; i++ {
		_, err := handler(context.Background(), newCall())
		require.NoError(t, err, "call %d should pass", i)
	}
	_, err := handler(context.Background(), newCall())
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestChain(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next CallFunc) CallFunc {
			return func(ctx context.Context, call *message.Call) (any, error) {
				order = append(order, name)
				return next(ctx, call)
			}
		}
	}

	handler := Chain(mark("a"), LoggingMiddleware(nil), mark("b"), TimeOutMiddleware(time.Second))(echoCall)
	_, err := handler(context.Background(), newCall())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, order)
}
