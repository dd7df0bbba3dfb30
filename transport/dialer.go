package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"uffi/protocol"
)

// Dialer connects a callee to its invoker's endpoint.
//
// The child may start before the invoker has finished binding, so every
// failed attempt is retried immediately. Limiter, when set, paces attempts;
// Timeout bounds the whole loop (zero retries forever).
type Dialer struct {
	Timeout time.Duration
	Limiter *rate.Limiter
	Logger  *zap.Logger
}

// Dial returns the first successful connection to path.
func (d *Dialer) Dial(ctx context.Context, path string) (net.Conn, error) {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	loopCtx := ctx
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		loopCtx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	var dialer net.Dialer
	attempts := 0
	for {
		attempts++
		conn, err := dialer.DialContext(loopCtx, protocol.Network, path)
		if err == nil {
			log.Debug("connected to endpoint", zap.String("endpoint", path), zap.Int("attempts", attempts))
			return conn, nil
		}
		if attempts == 1 {
			log.Debug("endpoint not ready, retrying", zap.String("endpoint", path), zap.Error(err))
		}
		if loopCtx.Err() != nil {
			return nil, d.giveUp(ctx, path, attempts, err)
		}
		if d.Limiter != nil {
			if werr := d.Limiter.Wait(loopCtx); werr != nil {
				return nil, d.giveUp(ctx, path, attempts, err)
			}
		}
	}
}

func (d *Dialer) giveUp(ctx context.Context, path string, attempts int, last error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("connect %s: %w", path, err)
	}
	return fmt.Errorf("%w: %s after %d attempts: %w", protocol.ErrConnectTimeout, path, attempts, last)
}
