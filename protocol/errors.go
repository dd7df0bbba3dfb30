package protocol

import "errors"

// Errors surfaced by invokers and callee runtimes. Concrete errors wrap one
// of these, so callers should test with errors.Is.
var (
	// ErrSpawn: the child executable is missing or could not be started.
	ErrSpawn = errors.New("uffi: spawn failed")
	// ErrEndpointConflict: a pre-existing endpoint entry could not be removed.
	ErrEndpointConflict = errors.New("uffi: endpoint conflict")
	// ErrDecode: the received or supplied text is not valid structured text.
	ErrDecode = errors.New("uffi: decode failed")
	// ErrEmptyResult: the peer closed the connection without a message.
	ErrEmptyResult = errors.New("uffi: empty result")
	// ErrConnectTimeout: the callee gave up connecting to the endpoint.
	ErrConnectTimeout = errors.New("uffi: connect timeout")
	// ErrMissingContext: the callee was asked to return a result outside of an invocation.
	ErrMissingContext = errors.New("uffi: missing invocation context")
	// ErrChildExited: the child terminated without connecting.
	ErrChildExited = errors.New("uffi: child exited before returning a result")
	// ErrUnknownCodec: the requested codec name is not registered.
	ErrUnknownCodec = errors.New("uffi: unknown codec")
)
