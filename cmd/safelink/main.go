// Command safelink scores URLs for phishing and scam risk.
// Usage: safelink <command> [flags]
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/raysh454/safelink/internal/app"
	"github.com/raysh454/safelink/internal/cli"
	"github.com/raysh454/safelink/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	args, err := cli.ParseArgs(argv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n%s\n", err, cli.Usage)
		return cli.ExitUsage
	}

	// A missing .env is normal; anything else is worth reporting.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: reading .env: %v\n", err)
	}

	cfg := app.LoadFromEnv(os.Getenv)
	logger := logging.NewSlogLoggerTo(os.Stderr, "safelink", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.NewApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", logging.Err(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return cli.ExitFailure
	}
	defer a.Close()

	return cli.Run(ctx, a, args, os.Stdout, os.Stderr)
}
