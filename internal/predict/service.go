// Package predict serves the /api/predict endpoint that the review page talks to.
package predict

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/reviewsense/internal/models"
	"github.com/spacesedan/reviewsense/internal/sentiment"
)

var ErrEmptyReview = errors.New("empty review")

type SentimentCache interface {
	GetSentiment(ctx context.Context, review string) (string, bool, error)
	SetSentiment(ctx context.Context, review, label string) error
}

type RecordStore interface {
	Save(ctx context.Context, record models.PredictionRecord) error
}

type EventPublisher interface {
	PublishPrediction(record models.PredictionRecord) error
}

type Option func(*Service)

func WithCache(c SentimentCache) Option     { return func(s *Service) { s.cache = c } }
func WithStore(r RecordStore) Option        { return func(s *Service) { s.store = r } }
func WithPublisher(p EventPublisher) Option { return func(s *Service) { s.publisher = p } }

// Service scores reviews. Cache, store and publisher are optional; their failures are
// logged and never fail a prediction.
type Service struct {
	classifier sentiment.Classifier
	cache      SentimentCache
	store      RecordStore
	publisher  EventPublisher
	now        func() time.Time
}

func NewService(classifier sentiment.Classifier, opts ...Option) *Service {
	s := &Service{classifier: classifier, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Predict(ctx context.Context, review string) (string, error) {
	if strings.TrimSpace(review) == "" {
		return "", ErrEmptyReview
	}

	text := sentiment.Normalize(review)
	record := models.PredictionRecord{
		ReviewID:  uuid.NewString(),
		Review:    review,
		CreatedAt: s.now().UTC(),
	}

	if label, ok := s.cached(ctx, text); ok {
		record.Sentiment = label
		record.Classifier = "cache"
		s.record(ctx, record)
		return label, nil
	}

	start := time.Now()
	prediction, err := s.classifier.Classify(ctx, text)
	if err != nil {
		slog.Error("[Predictor] Classification failed",
			slog.String("classifier", s.classifier.Name()),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("classify review: %w", err)
	}

	slog.Info("[Predictor] Review classified",
		slog.String("classifier", s.classifier.Name()),
		slog.String("sentiment", prediction.Label),
		slog.Float64("score", prediction.Score),
		slog.Duration("elapsed", time.Since(start)))

	if s.cache != nil {
		if err := s.cache.SetSentiment(ctx, text, prediction.Label); err != nil {
			slog.Warn("[Predictor] Failed to cache prediction", slog.String("error", err.Error()))
		}
	}

	record.Sentiment = prediction.Label
	record.Score = prediction.Score
	record.Classifier = s.classifier.Name()
	s.record(ctx, record)

	return prediction.Label, nil
}

func (s *Service) cached(ctx context.Context, text string) (string, bool) {
	if s.cache == nil {
		return "", false
	}

	label, ok, err := s.cache.GetSentiment(ctx, text)
	if err != nil {
		slog.Warn("[Predictor] Cache lookup failed", slog.String("error", err.Error()))
		return "", false
	}
	return label, ok
}

func (s *Service) record(ctx context.Context, record models.PredictionRecord) {
	if s.store != nil {
		if err := s.store.Save(ctx, record); err != nil {
			slog.Warn("[Predictor] Failed to store prediction",
				slog.String("review_id", record.ReviewID),
				slog.String("error", err.Error()))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishPrediction(record); err != nil {
			slog.Warn("[Predictor] Failed to publish prediction",
				slog.String("review_id", record.ReviewID),
				slog.String("error", err.Error()))
		}
	}
}
