package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/wfrun/wfrun/pkg/cli"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.Version = version

	// Ctrl+C cancels the run context; in-flight steps see the
	// cancellation through their exec contexts.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(cli.Execute(ctx))
}
