// Command echo_uffi returns its arguments unchanged. Run directly it echoes
// its command-line arguments as a JSON list on stdout.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"uffi/callee"
)

func main() {
	if err := run(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(w io.Writer) error {
	rt, err := callee.Load()
	if err != nil {
		return err
	}
	args, err := rt.Arguments()
	if err != nil {
		return err
	}

	if !rt.Context().Invoked() {
		return printJSON(w, args)
	}
	callee.ReturnResult(args)
	return nil
}

func printJSON(w io.Writer, v any) error {
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("echo_uffi: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
