package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joseph-ayodele/coverage-extractor/internal/app"
	"github.com/joseph-ayodele/coverage-extractor/internal/common"
)

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(os.Stdout, cfg.Log)

	if err := cfg.Validate(); err != nil {
		logger.Error("config.invalid", "err", err)
		os.Exit(2)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("app.init.failed", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	errCh := make(chan error, 2)
	go func() { errCh <- a.Server.Start() }()
	if a.Health != nil {
		go func() { errCh <- a.Health.Serve() }()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down...")
	case err := <-errCh:
		if err != nil {
			logger.Error("serve.failed", "err", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http.shutdown.failed", "err", err)
	}
	if a.Health != nil {
		a.Health.Stop()
	}
	logger.Info("stopped")
}
