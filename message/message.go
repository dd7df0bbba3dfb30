// Package message defines the call record passed through the invoker and the
// generic value model carried over the rendezvous channel.
//
// Values are plain Go data: nil, bool, int64, float64, string, []any and
// map[string]any. Codecs decode into whatever their library produces and
// Normalize folds the result back into this set, so a value survives an
// encode/decode round trip unchanged.
package message

// Call describes a single out-of-process invocation.
//
//   - Command is the executable path (or name looked up in PATH).
//   - Args are the ordered call arguments.
//   - Codec names the codec for this call; empty selects the invoker default.
//   - Endpoint is filled in by the invoker once the rendezvous path is chosen.
type Call struct {
	Command  string
	Args     []any
	Codec    string
	Endpoint string
}

// Argv renders Args as positional command-line arguments.
func (c *Call) Argv() []string {
	argv := make([]string, len(c.Args))
	for i, arg := range c.Args {
		argv[i] = Stringify(arg)
	}
	return argv
}
