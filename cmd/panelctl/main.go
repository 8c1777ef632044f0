package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/edvin/dockpanel/internal/config"
	"github.com/edvin/dockpanel/internal/core"
	"github.com/edvin/dockpanel/internal/logging"
	"github.com/edvin/dockpanel/internal/panelctl"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] == "help" || os.Args[1] == "-h" {
		panelctl.Usage(os.Stderr)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate("panelctl"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries command results.
	logger := logging.NewLogger(cfg).Output(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, backend, err := core.Open(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = panelctl.Run(ctx, core.NewServices(deps), os.Args[1:], os.Stdout)
	backend.Close()

	if errors.Is(err, panelctl.ErrUsage) {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		panelctl.Usage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
