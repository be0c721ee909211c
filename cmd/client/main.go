package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"Stash/internal/cli/commands"
	"Stash/internal/config"
)

// Заполняются при сборке через -ldflags "-X main.version=..."
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.NewConfig()
	if cfg.Version {
		printVersion(cfg)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return commands.Dispatch(ctx, cfg, flag.Args())
}

func printVersion(cfg *config.Config) {
	fmt.Printf("Stash CLI %s (built %s, %s)\n", version, buildDate, runtime.Version())
	fmt.Printf("Server: %s\nToken file: %s\n", cfg.ServerURL, cfg.TokenFile)
}
