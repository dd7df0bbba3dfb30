// Package invoker calls external executables as if they were local functions.
//
// Each call binds a fresh Unix socket, starts the executable with the socket
// path and the encoded arguments in its environment, and waits for the child
// to connect and write its single result:
//
//	inv, _ := invoker.New(invoker.Options{})
//	result, err := inv.Call(ctx, "echo_uffi", []any{1, "two", []any{3, 4}})
//	// result == []any{int64(1), "two", []any{int64(3), int64(4)}}
//
// The endpoint is removed on every exit path. Cancelling ctx abandons the
// call and kills the child; with context.Background a call waits for as long
// as the child takes.
package invoker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"uffi/codec"
	"uffi/message"
	"uffi/middleware"
	"uffi/protocol"
	"uffi/transport"
)

// Invoker performs out-of-process calls. It holds no per-call state and is
// safe for concurrent use.
type Invoker struct {
	opts    Options
	codec   codec.Codec
	log     *zap.Logger
	handler middleware.CallFunc
}

// New creates an Invoker.
func New(opts Options) (*Invoker, error) {
	opts.applyDefaults()
	cdc, err := codec.ByName(opts.Codec)
	if err != nil {
		return nil, err
	}
	inv := &Invoker{
		opts:  opts,
		codec: cdc,
		log:   opts.Logger.Named("invoker"),
	}
	inv.handler = middleware.Chain(opts.Middlewares...)(inv.invoke)
	return inv, nil
}

// Call runs command with args and returns the value it reports back.
func (inv *Invoker) Call(ctx context.Context, command string, args []any) (any, error) {
	return inv.handler(ctx, &message.Call{Command: command, Args: args})
}

// CallInto is Call followed by decoding the result into out, which must be
// a pointer.
func (inv *Invoker) CallInto(ctx context.Context, command string, args []any, out any) error {
	result, err := inv.Call(ctx, command, args)
	if err != nil {
		return err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("convert result: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("convert result into %T: %w", out, err)
	}
	return nil
}

// CallNamed resolves name through the configured registry and calls the
// executable registered for it, using the function's preferred codec.
func (inv *Invoker) CallNamed(ctx context.Context, name string, args []any) (any, error) {
	if inv.opts.Registry == nil {
		return nil, fmt.Errorf("call %q: no registry configured", name)
	}
	fn, err := inv.opts.Registry.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	return inv.handler(ctx, &message.Call{Command: fn.Path, Args: args, Codec: fn.Codec})
}

// Function binds command to inv.
func (inv *Invoker) Function(command string) *Function {
	return &Function{inv: inv, command: command}
}

// Function is an external executable bound to an Invoker.
type Function struct {
	inv     *Invoker
	command string
}

// Command returns the bound executable.
func (f *Function) Command() string {
	return f.command
}

// Call invokes the function with args.
func (f *Function) Call(ctx context.Context, args ...any) (any, error) {
	return f.inv.Call(ctx, f.command, args)
}

// Call performs a single untimed call with default options. It blocks until
// the child reports a result.
func Call(command string, args ...any) (any, error) {
	inv, err := New(Options{})
	if err != nil {
		return nil, err
	}
	return inv.Call(context.Background(), command, args)
}

// invoke is the terminal CallFunc behind the middleware chain.
func (inv *Invoker) invoke(ctx context.Context, call *message.Call) (result any, err error) {
	cdc := inv.codec
	if call.Codec != "" {
		if cdc, err = codec.ByName(call.Codec); err != nil {
			return nil, err
		}
	}
	if call.Args == nil {
		call.Args = []any{}
	}

	call.Endpoint = inv.opts.Namer.EndpointPath(inv.opts.EndpointDir)
	log := inv.log.With(zap.String("command", call.Command), zap.String("endpoint", call.Endpoint))
	state := func(s State) { log.Debug("call state", zap.String("state", string(s))) }
	state(StateIdle)

	ln, err := transport.Listen(call.Endpoint)
	if err != nil {
		state(StateCleaned)
		return nil, err
	}
	defer func() {
		if cerr := ln.Close(); cerr != nil {
			log.Warn("endpoint cleanup failed", zap.Error(cerr))
			if err == nil {
				err = cerr
			}
		}
		state(StateCleaned)
	}()
	state(StateEndpointBound)

	payload, err := cdc.Encode(call.Args)
	if err != nil {
		return nil, fmt.Errorf("encode arguments: %w", err)
	}

	cmd := exec.Command(call.Command, call.Argv()...)
	cmd.Env = inv.childEnv(call.Endpoint, cdc.Name(), payload)
	cmd.Stdin = inv.opts.Stdin
	cmd.Stdout = inv.opts.Stdout
	cmd.Stderr = inv.opts.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", protocol.ErrSpawn, call.Command, err)
	}
	state(StateChildSpawned)
	go inv.reap(cmd, ln, log)

	state(StateAwaitingConnection)
	conn, err := ln.Accept(ctx)
	if err != nil {
		inv.abandon(ctx, cmd)
		return nil, fmt.Errorf("await result: %w", err)
	}
	state(StateConnected)

	msg, err := transport.ReadMessage(ctx, conn, inv.opts.ReadBufferSize)
	// One message per connection: whatever follows is never read.
	conn.Close()
	if err != nil {
		inv.abandon(ctx, cmd)
		return nil, err
	}
	log.Debug("result received", zap.Int("bytes", len(msg)))

	result, err = cdc.Decode(msg)
	if err != nil {
		return nil, err
	}
	state(StateResultDecoded)
	return result, nil
}

// childEnv is the inherited environment without stale protocol variables,
// followed by Options.Env and this call's context.
func (inv *Invoker) childEnv(endpoint, codecName string, payload []byte) []string {
	env := make([]string, 0, len(os.Environ())+len(inv.opts.Env)+4)
	for _, kv := range os.Environ() {
		if !isProtocolVar(kv) {
			env = append(env, kv)
		}
	}
	env = append(env, inv.opts.Env...)
	env = append(env,
		protocol.EnvSocket+"="+endpoint,
		protocol.EnvArgs+"="+string(payload),
		protocol.EnvCodec+"="+codecName,
	)
	if inv.opts.ConnectTimeout > 0 {
		env = append(env, protocol.EnvConnectTimeout+"="+inv.opts.ConnectTimeout.String())
	}
	return env
}

func isProtocolVar(kv string) bool {
	for _, name := range []string{protocol.EnvSocket, protocol.EnvArgs, protocol.EnvCodec, protocol.EnvConnectTimeout} {
		if strings.HasPrefix(kv, name+"=") {
			return true
		}
	}
	return false
}

// reap waits for the child so it does not linger as a zombie. The exit code
// is not part of the protocol and is only logged.
func (inv *Invoker) reap(cmd *exec.Cmd, ln *transport.Listener, log *zap.Logger) {
	err := cmd.Wait()
	log.Debug("child exited", zap.Int("pid", cmd.Process.Pid), zap.String("status", cmd.ProcessState.String()))
	if inv.opts.FailOnChildExit {
		cause := fmt.Errorf("%w: %s", protocol.ErrChildExited, cmd.ProcessState)
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			cause = fmt.Errorf("%w: %w", protocol.ErrChildExited, err)
		}
		ln.Abort(cause, inv.opts.ChildExitGrace)
	}
}

// abandon kills the child of a call given up on because ctx is done.
func (inv *Invoker) abandon(ctx context.Context, cmd *exec.Cmd) {
	if ctx.Err() == nil {
		return
	}
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		inv.log.Warn("failed to kill abandoned child", zap.Int("pid", cmd.Process.Pid), zap.Error(err))
	}
}
