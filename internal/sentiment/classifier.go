package sentiment

import (
	"context"
	"errors"
	"strings"

	"github.com/spacesedan/reviewsense/internal/models"
)

var ErrUnknownLabel = errors.New("classifier returned an unknown label")

type Prediction struct {
	Label string
	Score float64
}

// Classifier scores one review. Implementations return models.SentimentPositive or
// models.SentimentNegative as the label.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, text string) (Prediction, error)
}

// LabelFromModelOutput maps the label vocabularies used by sentiment models
// (POSITIVE, pos, LABEL_1, ...) onto the two labels the API returns.
func LabelFromModelOutput(raw string) (string, error) {
	label := strings.ToUpper(strings.Trim(strings.TrimSpace(raw), `."'`))
	switch {
	case strings.HasPrefix(label, "POS"), label == "LABEL_1", label == "1":
		return models.SentimentPositive, nil
	case strings.HasPrefix(label, "NEG"), label == "LABEL_0", label == "0":
		return models.SentimentNegative, nil
	default:
		return "", ErrUnknownLabel
	}
}
