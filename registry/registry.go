// Package registry maps function names to the local executables that
// implement them, so callers can invoke "resize" instead of a full path.
//
// Resolution only produces a path. The call itself always runs on the local
// host through a local endpoint.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a name has no registered function.
var ErrNotFound = errors.New("registry: function not found")

// Function describes one callable executable.
type Function struct {
	Name    string `json:"name"`
	Path    string `json:"path"`    // executable path on the local host
	Codec   string `json:"codec"`   // preferred codec, empty for the invoker default
	Version string `json:"version"` // free-form, informational
}

// Validate reports whether f can be registered.
func (f Function) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("registry: function name is required")
	}
	if strings.ContainsRune(f.Name, '/') {
		return fmt.Errorf("registry: function name %q must not contain '/'", f.Name)
	}
	if strings.TrimSpace(f.Path) == "" {
		return fmt.Errorf("registry: function %q has no path", f.Name)
	}
	return nil
}

type Registry interface {
	// Register adds or replaces f. A positive ttl (seconds) expires the entry
	// unless it is kept alive; zero keeps it until Deregister.
	Register(ctx context.Context, f Function, ttl int64) error
	Deregister(ctx context.Context, name string) error
	Resolve(ctx context.Context, name string) (Function, error)
	List(ctx context.Context) ([]Function, error)
}
