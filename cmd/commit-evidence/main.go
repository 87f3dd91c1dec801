// cmd/commit-evidence/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"commit-evidence/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version string

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCodeOf(err))
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cli.SetVersion(version)
	return cli.NewRootCmd().ExecuteContext(ctx)
}
