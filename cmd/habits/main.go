package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/habitkit/habits/cmd/habits/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// A second interrupt terminates the process
	go func() {
		<-ctx.Done()
		stop()
	}()

	rootCmd := commands.NewRootCommand()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
