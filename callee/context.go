package callee

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Blob is an environment value that remembers whether it was set at all,
// so an empty argument list can be told apart from a missing one.
type Blob struct {
	Text    string
	Present bool
}

// Decode implements envconfig.Decoder. It is only called when the variable
// exists.
func (b *Blob) Decode(value string) error {
	b.Text = value
	b.Present = true
	return nil
}

// DefaultConnectTimeout bounds the connect loop when UFFI_CONNECT_TIMEOUT
// is not set.
const DefaultConnectTimeout = 30 * time.Second

// Context is the invocation context an invoker hands to its child.
// It is read once at startup and never changes afterward.
type Context struct {
	Socket string `envconfig:"UFFI_SOCKET"`
	Args   Blob   `envconfig:"UFFI_ARGS"`
	Codec  string `envconfig:"UFFI_CODEC" default:"json"`

	// The connect settings only matter when a result is sent, so they are
	// loaded separately and a malformed value fails Send, not Arguments.
	ConnectTimeout time.Duration `ignored:"true"`
	// ConnectRate caps connect attempts per second; zero retries immediately.
	ConnectRate float64 `ignored:"true"`

	connectErr error
}

type connectSettings struct {
	Timeout time.Duration `envconfig:"UFFI_CONNECT_TIMEOUT" default:"30s"`
	Rate    float64       `envconfig:"UFFI_CONNECT_RATE" default:"0"`
}

// LoadContext captures the invocation context from the process environment.
func LoadContext() (Context, error) {
	var c Context
	if err := envconfig.Process("", &c); err != nil {
		return Context{}, fmt.Errorf("callee: load invocation context: %w", err)
	}

	var cs connectSettings
	if err := envconfig.Process("", &cs); err != nil {
		c.ConnectTimeout = DefaultConnectTimeout
		c.connectErr = fmt.Errorf("callee: load connect settings: %w", err)
		return c, nil
	}
	c.ConnectTimeout = cs.Timeout
	c.ConnectRate = cs.Rate
	return c, nil
}

// Invoked reports whether the process was started by an invoker.
func (c Context) Invoked() bool {
	return c.Args.Present
}
