package invoker

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"uffi/codec"
	"uffi/middleware"
	"uffi/protocol"
	"uffi/registry"
)

// Default configuration values.
const (
	DefaultChildExitGrace = 250 * time.Millisecond
)

// Options configures an Invoker. The zero value is usable.
type Options struct {
	// Codec names the codec for arguments and results.
	// Default: "json"
	Codec string

	// EndpointDir is the directory endpoints are created in.
	// Default: os.TempDir()
	EndpointDir string

	// Namer derives each call's endpoint path.
	// Default: protocol.UniqueNamer
	Namer protocol.Namer

	// Env is appended to the child's environment, after the inherited
	// environment and before the protocol variables.
	Env []string

	// Stdin, Stdout and Stderr are wired to the child.
	// Default: no stdin; stdout and stderr are inherited.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// ConnectTimeout is forwarded to the child as UFFI_CONNECT_TIMEOUT.
	// Zero leaves the child's own default in place.
	ConnectTimeout time.Duration

	// FailOnChildExit makes a call fail with protocol.ErrChildExited when the
	// child terminates without connecting, instead of waiting forever.
	FailOnChildExit bool

	// ChildExitGrace is how long a result already queued on the endpoint is
	// still accepted after the child has exited.
	// Default: 250ms
	ChildExitGrace time.Duration

	// ReadBufferSize is the buffer for the one read that receives the result.
	// Only the first chunk is read, so a result larger than the socket
	// delivers at once arrives truncated and fails with protocol.ErrDecode
	// even when it is below this size.
	// Default: protocol.DefaultReadBufferSize
	ReadBufferSize int

	// Registry resolves function names for CallNamed.
	// Optional; CallNamed fails without one.
	Registry registry.Registry

	// Middlewares wrap every call, outermost first.
	Middlewares []middleware.Middleware

	// Logger receives call lifecycle events.
	// Default: no-op
	Logger *zap.Logger
}

// applyDefaults sets default values for unset optional fields.
func (o *Options) applyDefaults() {
	if o.Codec == "" {
		o.Codec = codec.Default
	}
	if o.EndpointDir == "" {
		o.EndpointDir = protocol.DefaultDir()
	}
	if o.Namer == nil {
		o.Namer = protocol.UniqueNamer
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.ChildExitGrace <= 0 {
		o.ChildExitGrace = DefaultChildExitGrace
	}
	if o.ReadBufferSize <= 0 {
		o.ReadBufferSize = protocol.DefaultReadBufferSize
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}
