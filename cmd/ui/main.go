package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spacesedan/reviewsense/config"
	"github.com/spacesedan/reviewsense/internal/clients"
	"github.com/spacesedan/reviewsense/internal/logging"
	"github.com/spacesedan/reviewsense/internal/monitoring"
	"github.com/spacesedan/reviewsense/internal/ui/server"
)

func main() {
	config.LoadEnv(config.AppEnv())
	cfg := config.Load()
	logging.InitLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	predictor := clients.NewPredictClient(cfg.PredictBaseURL, cfg.PredictTimeout)

	predictorHealthy := &atomic.Bool{}
	go monitoring.MonitorPredictorHealth(ctx, predictor, predictorHealthy, cfg.HealthcheckEvery)

	ui, err := server.New(server.Options{
		Predictor:        predictor,
		IdleTimeout:      cfg.SessionIdleTimeout,
		PredictorHealthy: predictorHealthy,
	})
	if err != nil {
		slog.Error("[Main] Failed to build UI server", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer ui.Close()

	if err := ui.StartSweeper(time.Minute); err != nil {
		slog.Warn("[Main] Session sweeper disabled", slog.String("error", err.Error()))
	}

	httpServer := &http.Server{
		Addr:              cfg.UIAddr,
		Handler:           ui.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("[Main] Shutdown failed", slog.String("error", err.Error()))
		}
	}()

	slog.Info("[Main] UI server listening",
		slog.String("addr", cfg.UIAddr),
		slog.String("predictor", cfg.PredictBaseURL),
		slog.String("env", cfg.Env))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("[Main] UI server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
