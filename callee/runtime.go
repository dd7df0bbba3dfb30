// Package callee is the runtime linked into programs that are invoked through
// the uffi protocol.
//
// A callee reads its arguments, computes, and hands back exactly one result:
//
//	func main() {
//	    args, err := callee.GetArguments()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    callee.ReturnResult(compute(args))
//	}
//
// The same program still works when run by hand: without an invocation
// context GetArguments returns the raw command-line arguments.
package callee

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"uffi/codec"
	"uffi/message"
	"uffi/protocol"
	"uffi/transport"
)

// Runtime gives a callee access to its invocation context.
type Runtime struct {
	ctx   Context
	argv  []string
	codec codec.Codec
	log   *zap.Logger
	exit  func(code int)
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. Callee logs must go to stderr; stdout belongs
// to the program.
func WithLogger(log *zap.Logger) Option {
	return func(r *Runtime) { r.log = log }
}

// WithExit replaces os.Exit as the final act of Return.
func WithExit(exit func(code int)) Option {
	return func(r *Runtime) { r.exit = exit }
}

// WithArgv replaces os.Args[1:] as the standalone arguments.
func WithArgv(argv []string) Option {
	return func(r *Runtime) { r.argv = argv }
}

// Load builds a Runtime from the process environment.
func Load(opts ...Option) (*Runtime, error) {
	c, err := LoadContext()
	if err != nil {
		return nil, err
	}
	return New(c, opts...)
}

// New builds a Runtime from an already captured context.
func New(c Context, opts ...Option) (*Runtime, error) {
	cdc, err := codec.ByName(c.Codec)
	if err != nil {
		return nil, err
	}
	r := &Runtime{
		ctx:   c,
		argv:  os.Args[1:],
		codec: cdc,
		log:   zap.NewNop(),
		exit:  os.Exit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Context returns the captured invocation context.
func (r *Runtime) Context() Context {
	return r.ctx
}

// Arguments returns the call arguments. Outside of an invocation it returns
// the raw command-line arguments as strings.
func (r *Runtime) Arguments() ([]any, error) {
	if !r.ctx.Invoked() {
		args := make([]any, len(r.argv))
		for i, a := range r.argv {
			args[i] = a
		}
		return args, nil
	}
	v, err := r.codec.Decode([]byte(r.ctx.Args.Text))
	if err != nil {
		return nil, fmt.Errorf("callee: arguments: %w", err)
	}
	args, err := message.NormalizeList(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", protocol.ErrDecode, err)
	}
	return args, nil
}

// Send delivers value as the call result and closes the connection.
func (r *Runtime) Send(ctx context.Context, value any) error {
	if r.ctx.Socket == "" {
		return fmt.Errorf("%w: %s is not set", protocol.ErrMissingContext, protocol.EnvSocket)
	}
	if r.ctx.connectErr != nil {
		return r.ctx.connectErr
	}
	data, err := r.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("callee: encode result: %w", err)
	}

	conn, err := r.dialer().Dial(ctx, r.ctx.Socket)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := protocol.WriteMessage(conn, data); err != nil {
		return err
	}
	return nil
}

func (r *Runtime) dialer() *transport.Dialer {
	d := &transport.Dialer{Timeout: r.ctx.ConnectTimeout, Logger: r.log}
	if r.ctx.ConnectRate > 0 {
		d.Limiter = rate.NewLimiter(rate.Limit(r.ctx.ConnectRate), 1)
	}
	return d
}

// Return sends value and terminates the process with status 0. If the result
// cannot be delivered the failure is logged and the process exits with
// status 1. It only returns if the exit function does.
func (r *Runtime) Return(value any) {
	if err := r.Send(context.Background(), value); err != nil {
		r.log.Error("failed to return result", zap.String("endpoint", r.ctx.Socket), zap.Error(err))
		r.exit(1)
		return
	}
	r.exit(0)
}
