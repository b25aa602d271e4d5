package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campuscafe-reports/internal/app"
	"campuscafe-reports/internal/config"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[MAIN] No .env file found, relying on system env vars")
	}

	srv, err := app.NewServer(config.Load())
	if err != nil {
		log.Fatalf("[MAIN] %v", err)
	}
	logger := srv.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run server in a separate goroutine so we can listen for shutdown signals
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
			_ = srv.Shutdown(context.Background())
			os.Exit(1)
		}
		return
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("server stopped gracefully")
}
