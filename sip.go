package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tableflip.dev/sip/pkg/commands"
)

// The root package lets `go install tableflip.dev/sip@latest` work.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.New().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
