package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"MyPass/internal/cli/commands"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := commands.Execute(ctx, fmt.Sprintf("%s (built %s)", version, buildDate)); err != nil {
		cancel()
		os.Exit(1)
	}
}
