package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings is the typed view over the environment shared by cmd/ui and cmd/predictor.
type Settings struct {
	Env      string
	LogLevel string

	UIAddr             string
	PredictBaseURL     string
	PredictTimeout     time.Duration
	SessionIdleTimeout time.Duration
	HealthcheckEvery   time.Duration

	PredictorAddr string
	Classifier    string
	ModelDir      string
	ModelName     string

	OpenAIAPIKey string
	OpenAIModel  string

	ValkeyAddress  string
	ValkeyPassword string
	ValkeyTLS      bool
	CacheTTL       time.Duration

	AWSRegion       string
	AWSEndpoint     string
	PredictionTable string

	KafkaBroker string
	KafkaTopic  string
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("[Config] Invalid duration, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Duration("default", defaultValue))
		return defaultValue
	}
	return d
}

func getBool(key string, defaultValue bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return b
}

// Load builds Settings from the current environment. Call LoadEnv first.
func Load() Settings {
	return Settings{
		Env:      AppEnv(),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		UIAddr:             getEnv("UI_ADDR", ":8080"),
		PredictBaseURL:     strings.TrimRight(getEnv("PREDICT_BASE_URL", "http://127.0.0.1:5000"), "/"),
		PredictTimeout:     getDuration("PREDICT_TIMEOUT", 30*time.Second),
		SessionIdleTimeout: getDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		HealthcheckEvery:   getDuration("HEALTHCHECK_INTERVAL", 15*time.Second),

		PredictorAddr: getEnv("PREDICTOR_ADDR", ":5000"),
		Classifier:    strings.ToLower(getEnv("CLASSIFIER", "vader")),
		ModelDir:      getEnv("MODEL_DIR", "./models"),
		ModelName:     getEnv("MODEL_NAME", "KnightsAnalytics/distilbert-base-uncased-finetuned-sst-2-english"),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		ValkeyAddress:  os.Getenv("VALKEY_INIT_ADDRESS"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
		ValkeyTLS:      getBool("VALKEY_TLS", false),
		CacheTTL:       getDuration("CACHE_TTL", 24*time.Hour),

		AWSRegion:       getEnv("AWS_REGION", "us-west-2"),
		AWSEndpoint:     os.Getenv("AWS_ENDPOINT"),
		PredictionTable: os.Getenv("PREDICTION_TABLE"),

		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		KafkaTopic:  getEnv("KAFKA_PREDICTION_TOPIC", "review-predictions"),
	}
}
