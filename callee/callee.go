package callee

import (
	"fmt"
	"os"

	"uffi/logging"
)

// GetArguments loads the invocation context and returns the call arguments.
func GetArguments() ([]any, error) {
	r, err := Load()
	if err != nil {
		return nil, err
	}
	return r.Arguments()
}

// ReturnResult sends value back to the invoker and exits the process.
// A process started outside of an invocation exits with status 1.
func ReturnResult(value any) {
	log := logging.NewDefault().Named("callee")
	exit := func(code int) {
		log.Sync()
		os.Exit(code)
	}

	r, err := Load(WithLogger(log.Logger), WithExit(exit))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		exit(1)
		return
	}
	r.Return(value)
}
