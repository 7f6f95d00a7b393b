// Package main is the entry point for the ansistr command.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// SIGINT and SIGTERM cancel the running operation's token.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return newCLI(os.Stdin, os.Stdout, os.Stderr).run(ctx, os.Args[1:])
}
