package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spacesedan/reviewsense/config"
	"github.com/spacesedan/reviewsense/internal/clients"
	"github.com/spacesedan/reviewsense/internal/clients/kafka_client"
	"github.com/spacesedan/reviewsense/internal/db"
	"github.com/spacesedan/reviewsense/internal/logging"
	"github.com/spacesedan/reviewsense/internal/predict"
	"github.com/spacesedan/reviewsense/internal/sentiment"
)

func newClassifier(cfg config.Settings) (sentiment.Classifier, func(), error) {
	switch cfg.Classifier {
	case "vader", "":
		return sentiment.NewVaderClassifier(), func() {}, nil
	case "transformer":
		tc, err := sentiment.NewTransformerClassifier(cfg.ModelDir, cfg.ModelName)
		if err != nil {
			return nil, nil, err
		}
		return tc, func() {
			if err := tc.Close(); err != nil {
				slog.Warn("[Main] Failed to close transformer session", slog.String("error", err.Error()))
			}
		}, nil
	case "openai":
		oc, err := clients.NewOpenAIClassifier(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			return nil, nil, err
		}
		return oc, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown classifier %q", cfg.Classifier)
	}
}

// optionalIntegrations wires whichever of cache, store and publisher are configured.
// A misconfigured integration is logged and skipped; the predictor still serves.
func optionalIntegrations(ctx context.Context, cfg config.Settings) ([]predict.Option, func()) {
	var opts []predict.Option
	var closers []func()

	if cfg.ValkeyAddress != "" {
		cache, err := clients.NewValkeyClient(clients.ValkeyOptions{
			Address:  cfg.ValkeyAddress,
			Password: cfg.ValkeyPassword,
			UseTLS:   cfg.ValkeyTLS,
			TTL:      cfg.CacheTTL,
		})
		if err != nil {
			slog.Warn("[Main] Prediction cache disabled", slog.String("error", err.Error()))
		} else {
			opts = append(opts, predict.WithCache(cache))
			closers = append(closers, cache.Close)
		}
	}

	if cfg.PredictionTable != "" {
		dynamo, err := clients.NewDynamoDBClient(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
		if err != nil {
			slog.Warn("[Main] Prediction store disabled", slog.String("error", err.Error()))
		} else {
			opts = append(opts, predict.WithStore(db.NewPredictionStore(dynamo, cfg.PredictionTable)))
		}
	}

	if cfg.KafkaBroker != "" {
		producer, err := kafka_client.NewProducer(kafka_client.KafkaConfig{
			Broker: cfg.KafkaBroker,
			Topic:  cfg.KafkaTopic,
		})
		if err != nil {
			slog.Warn("[Main] Prediction events disabled", slog.String("error", err.Error()))
		} else {
			opts = append(opts, predict.WithPublisher(producer))
			closers = append(closers, producer.Close)
		}
	}

	return opts, func() {
		for _, c := range closers {
			c()
		}
	}
}

func main() {
	config.LoadEnv(config.AppEnv())
	cfg := config.Load()
	logging.InitLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	classifier, closeClassifier, err := newClassifier(cfg)
	if err != nil {
		slog.Error("[Main] Failed to build classifier",
			slog.String("classifier", cfg.Classifier),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeClassifier()

	opts, closeIntegrations := optionalIntegrations(ctx, cfg)
	defer closeIntegrations()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	predict.NewService(classifier, opts...).Register(e)

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := e.Shutdown(shutdownCtx); err != nil {
			slog.Warn("[Main] Shutdown failed", slog.String("error", err.Error()))
		}
	}()

	slog.Info("[Main] Predictor listening",
		slog.String("addr", cfg.PredictorAddr),
		slog.String("classifier", classifier.Name()),
		slog.String("env", cfg.Env))
	if err := e.Start(cfg.PredictorAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("[Main] Predictor stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
