package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"FeedEngager/internal/app"
	"FeedEngager/internal/config"
	"FeedEngager/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger, app.Options{})
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	// A signal cancels the current run cooperatively; the in-flight step
	// finishes before the loop exits.
	go func() {
		<-ctx.Done()
		application.Cancel()
	}()

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
