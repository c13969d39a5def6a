package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloo-solutions/kbdocs/internal/cli"
	"github.com/cloo-solutions/kbdocs/internal/cli/client"
	"github.com/joho/godotenv"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := client.RootCmd(version)

	if handled, err := cli.HandleHelpJSON(rootCmd, os.Args[1:], os.Stdout); handled {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating schema: %v\n", err)
			os.Exit(1)
		}
		return
	}

	err := rootCmd.ExecuteContext(ctx)
	if errors.Is(err, client.ErrInterrupted) || (err != nil && ctx.Err() != nil) {
		fmt.Println("\n\nInterrupted by user")
		return
	}
	if err != nil {
		fmt.Printf("\nError: %v\n", err)
		stop()
		os.Exit(1)
	}
}
