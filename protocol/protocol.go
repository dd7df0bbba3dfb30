// Package protocol defines the single-shot rendezvous contract between an
// invoker and the program it spawns.
//
// The invoker hands the child its context through environment variables and
// then waits on a Unix socket. The child connects once and writes exactly
// one message, the encoded result. There is no header, length prefix,
// acknowledgment or version negotiation:
//
//	invoker                                   child
//	  bind  UFFI_SOCKET
//	  spawn ── env: UFFI_SOCKET, UFFI_ARGS ──→  decode UFFI_ARGS
//	  accept                                    ...compute...
//	        ←──────────── connect ────────────  (retried until bound)
//	        ←──────────── result  ────────────  write, close, exit(0)
//	  read first chunk, decode
//	  close, unlink UFFI_SOCKET
package protocol

import (
	"fmt"
	"io"
)

// Environment variables set by the invoker for the spawned child only.
const (
	EnvSocket         = "UFFI_SOCKET"          // endpoint path
	EnvArgs           = "UFFI_ARGS"            // encoded argument list
	EnvCodec          = "UFFI_CODEC"           // codec name used for args and result
	EnvConnectTimeout = "UFFI_CONNECT_TIMEOUT" // bound on the child's connect loop
)

// Network is the socket family used for every endpoint.
const Network = "unix"

// DefaultReadBufferSize is the buffer for the single read that receives a
// result. It is an upper bound only: a read returns what the socket holds at
// that moment, which for a large result is a prefix (a few hundred KiB on
// Linux), and the truncated text then fails to decode. Results are meant to
// stay small.
const DefaultReadBufferSize = 1 << 20

// ReadMessage reads the one message carried by a rendezvous connection.
//
// The first non-empty chunk is the complete message, anything the peer sends
// afterward is ignored. A peer that closes without writing yields
// ErrEmptyResult.
func ReadMessage(r io.Reader, bufSize int) ([]byte, error) {
	if bufSize <= 0 {
		bufSize = DefaultReadBufferSize
	}
	buf := make([]byte, bufSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			return buf[:n], nil
		}
		if err == io.EOF {
			return nil, ErrEmptyResult
		}
		if err != nil {
			return nil, fmt.Errorf("read result: %w", err)
		}
	}
}

// WriteMessage writes data as the single message of a rendezvous connection.
// It issues one Write so the reader receives the message as one chunk.
func WriteMessage(w io.Writer, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("write result: %w", ErrEmptyResult)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
