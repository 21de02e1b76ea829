package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"ReviewScanner/internal/app"
	"ReviewScanner/internal/config"
	"ReviewScanner/internal/logging"
)

func main() {
	setupSession := flag.Bool("setup-session", false, "open a headed browser for manual login and save the session artifact")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("application startup failed", "error", err)
		os.Exit(1)
	}

	if *setupSession {
		err = application.BootstrapSession(ctx)
	} else {
		err = application.Run(ctx)
	}

	if closeErr := application.Close(); closeErr != nil {
		logger.Error("shutdown cleanup failed", "error", closeErr)
	}

	if err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
