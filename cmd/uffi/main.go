// Command uffi calls an executable through the uffi protocol and prints the
// result as JSON.
//
//	uffi [flags] <command> [arg...]
//	uffi -name <function> [arg...]   (requires UFFI_ETCD_ENDPOINTS)
//
// Each arg is parsed as JSON and taken as a plain string when that fails,
// so `uffi echo_uffi 1 two '[3,4]'` passes [1, "two", [3, 4]].
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"uffi/config"
	"uffi/invoker"
	"uffi/middleware"
	"uffi/registry"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "uffi:", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("uffi", flag.ContinueOnError)
	codecName := fs.String("codec", cfg.Invoker.Codec, "codec for arguments and result (json, yaml, sonic)")
	timeout := fs.Duration("timeout", cfg.Invoker.CallTimeout, "abandon the call after this long (0 waits forever)")
	name := fs.String("name", "", "resolve the function by name through the registry")
	failOnExit := fs.Bool("fail-on-exit", cfg.Invoker.FailOnChildExit, "fail if the child exits without returning")
	if err := fs.Parse(argv); err != nil {
		return err
	}
	rest := fs.Args()
	if *name == "" && len(rest) == 0 {
		fs.Usage()
		return fmt.Errorf("missing command")
	}
	if *name != "" && len(cfg.Registry.EtcdEndpoints) == 0 {
		return errNoRegistry
	}

	logger, err := cfg.Logger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	reg, closeReg, err := openRegistry(cfg, logger.Logger)
	if err != nil {
		return err
	}
	defer closeReg()

	mws := []middleware.Middleware{middleware.LoggingMiddleware(logger.Named("call").Logger)}
	if cfg.RateLimit.CallsPerSecond > 0 {
		mws = append(mws, middleware.RateLimitMiddleware(cfg.RateLimit.CallsPerSecond, cfg.RateLimit.Burst))
	}
	mws = append(mws, middleware.TimeOutMiddleware(*timeout))

	inv, err := invoker.New(invoker.Options{
		Codec:           *codecName,
		EndpointDir:     cfg.Invoker.EndpointDir,
		ConnectTimeout:  cfg.Invoker.ConnectTimeout,
		FailOnChildExit: *failOnExit,
		Registry:        reg,
		Middlewares:     mws,
		Logger:          logger.Logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var result any
	if *name != "" {
		result, err = inv.CallNamed(ctx, *name, parseArgs(rest))
	} else {
		result, err = inv.Call(ctx, rest[0], parseArgs(rest[1:]))
	}
	if err != nil {
		return err
	}

	out, err := json.Marshal(result)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func parseArgs(raw []string) []any {
	args := make([]any, len(raw))
	for i, s := range raw {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			v = s
		}
		args[i] = v
	}
	return args
}

// errNoRegistry rejects -name when no shared registry is configured; a
// process-local registry would always be empty here.
var errNoRegistry = errors.New("-name needs a function registry: set UFFI_ETCD_ENDPOINTS")

// openRegistry connects to etcd when endpoints are configured. Without them
// the CLI has no registry and only calls executables by path.
func openRegistry(cfg *config.Config, log *zap.Logger) (registry.Registry, func(), error) {
	if len(cfg.Registry.EtcdEndpoints) == 0 {
		return nil, func() {}, nil
	}
	reg, err := registry.NewEtcdRegistry(cfg.Registry.EtcdEndpoints, cfg.Registry.EtcdPrefix, cfg.Registry.DialTimeout, log)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := reg.Close(); err != nil {
			log.Warn("closing registry", zap.Error(err))
		}
	}
	return reg, closeFn, nil
}
