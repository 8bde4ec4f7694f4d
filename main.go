package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/godel-oidc/authflow/internal/cli"
)

func main() {
	args := os.Args[1:]
	// Container health probes call the binary with a single flag.
	if len(args) == 1 && args[0] == "-healthcheck" {
		args = []string{"healthcheck"}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
