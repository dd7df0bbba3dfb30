package protocol

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Endpoint files are named EndpointPrefix + identity + EndpointSuffix.
const (
	EndpointPrefix = "uffi_"
	EndpointSuffix = ".sock"
)

// Namer derives the endpoint path for one call inside dir.
type Namer interface {
	EndpointPath(dir string) string
}

// NamerFunc adapts a function to Namer.
type NamerFunc func(dir string) string

func (f NamerFunc) EndpointPath(dir string) string { return f(dir) }

// PIDNamer names the endpoint after the calling process only. Two calls in
// flight from the same process collide, so it is kept for interoperating
// with peers that expect the fixed name.
var PIDNamer Namer = NamerFunc(func(dir string) string {
	return filepath.Join(dir, fmt.Sprintf("%s%d%s", EndpointPrefix, os.Getpid(), EndpointSuffix))
})

// UniqueNamer names the endpoint after the calling process plus a ULID, which
// makes concurrent calls from one process safe.
var UniqueNamer Namer = &ulidNamer{entropy: ulid.Monotonic(rand.Reader, 0)}

type ulidNamer struct {
	mu      sync.Mutex // monotonic entropy is not safe for concurrent use
	entropy io.Reader
}

func (n *ulidNamer) EndpointPath(dir string) string {
	n.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), n.entropy)
	n.mu.Unlock()
	return filepath.Join(dir, fmt.Sprintf("%s%d_%s%s", EndpointPrefix, os.Getpid(), id, EndpointSuffix))
}

// DefaultDir is where endpoints are created when no directory is configured.
func DefaultDir() string {
	return os.TempDir()
}

// ClearEndpoint removes a stale entry at path before it is bound.
// Only "does not exist" is tolerated; any other removal failure is reported
// as ErrEndpointConflict.
func ClearEndpoint(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrEndpointConflict, path, err)
}
