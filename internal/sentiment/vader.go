package sentiment

import (
	"context"

	"github.com/jonreiter/govader"
	"github.com/spacesedan/reviewsense/internal/models"
)

// VaderClassifier is the default lexicon-based classifier. Reviews are binary, so a
// compound score of exactly zero counts as positive.
type VaderClassifier struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderClassifier() *VaderClassifier {
	return &VaderClassifier{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderClassifier) Name() string { return "vader" }

func (v *VaderClassifier) Classify(ctx context.Context, text string) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}

	score := v.analyzer.PolarityScores(text).Compound
	label := models.SentimentPositive
	if score < 0 {
		label = models.SentimentNegative
	}

	return Prediction{Label: label, Score: score}, nil
}
