// Package transport implements the local rendezvous channel: a Unix socket
// bound at the endpoint path by the invoker and dialed once by the callee.
//
// A Listener accepts exactly one connection per call. Accept and reads take a
// context; cancelling it moves the socket deadline to now, which unblocks
// the pending syscall without tearing the listener down underneath it.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"sync"
	"time"

	"uffi/protocol"
)

// Listener is a bound endpoint.
type Listener struct {
	path string
	ln   *net.UnixListener

	mu    sync.Mutex
	cause error // set by Abort, returned by a timed-out Accept

	closeOnce sync.Once
	closeErr  error
}

// Listen clears any stale entry at path and binds a fresh socket there.
func Listen(path string) (*Listener, error) {
	if err := protocol.ClearEndpoint(path); err != nil {
		return nil, err
	}
	ln, err := net.ListenUnix(protocol.Network, &net.UnixAddr{Name: path, Net: protocol.Network})
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", path, err)
	}
	// Close unlinks the path itself so a failed removal is reported.
	ln.SetUnlinkOnClose(false)
	return &Listener{path: path, ln: ln}, nil
}

// Path returns the endpoint path the listener is bound to.
func (l *Listener) Path() string {
	return l.path
}

// Accept waits for the single incoming connection.
func (l *Listener) Accept(ctx context.Context) (*net.UnixConn, error) {
	stop := context.AfterFunc(ctx, func() {
		l.Abort(context.Cause(ctx), 0)
	})
	defer stop()

	conn, err := l.ln.AcceptUnix()
	if err == nil {
		return conn, nil
	}
	if cause := l.abortCause(); cause != nil && errors.Is(err, os.ErrDeadlineExceeded) {
		return nil, cause
	}
	return nil, fmt.Errorf("accept %s: %w", l.path, err)
}

// Abort makes a pending or future Accept fail with cause once grace has
// elapsed. A connection already queued within grace is still accepted.
// Only the first cause is kept.
func (l *Listener) Abort(cause error, grace time.Duration) {
	l.mu.Lock()
	if l.cause == nil {
		l.cause = cause
	}
	l.mu.Unlock()
	_ = l.ln.SetDeadline(time.Now().Add(grace))
}

func (l *Listener) abortCause() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cause
}

// Close closes the socket and removes the endpoint entry. It is safe to call
// more than once; later calls return the first result.
func (l *Listener) Close() error {
	l.closeOnce.Do(func() {
		var errs []error
		if err := l.ln.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", l.path, err))
		}
		if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", l.path, err))
		}
		l.closeErr = errors.Join(errs...)
	})
	return l.closeErr
}

// ReadMessage reads the single result message from conn, giving up when ctx
// is done.
func ReadMessage(ctx context.Context, conn net.Conn, bufSize int) ([]byte, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	msg, err := protocol.ReadMessage(conn, bufSize)
	if err != nil && ctx.Err() != nil && errors.Is(err, os.ErrDeadlineExceeded) {
		return nil, context.Cause(ctx)
	}
	return msg, err
}
