package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/spacesedan/reviewsense/internal/models"
)

type textClassifier interface {
	RunPipeline(inputs []string) (*pipelines.TextClassificationOutput, error)
}

// TransformerClassifier runs an ONNX sequence classification model (an SST-2
// fine-tune by default) through a hugot pipeline.
type TransformerClassifier struct {
	session  *hugot.Session
	pipeline textClassifier
}

func modelPathFor(modelDir, modelName string) string {
	return filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))
}

func NewTransformerClassifier(modelDir, modelName string) (*TransformerClassifier, error) {
	if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create model directory: %w", err)
	}

	modelPath := modelPathFor(modelDir, modelName)
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		slog.Info("[TransformerClassifier] Model not found, downloading...",
			slog.String("model", modelName))
		modelPath, err = hugot.DownloadModel(modelName, modelDir, hugot.NewDownloadOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to download model %s: %w", modelName, err)
		}
		slog.Info("[TransformerClassifier] Model downloaded successfully", slog.String("path", modelPath))
	} else {
		slog.Info("[TransformerClassifier] Using existing model", slog.String("path", modelPath))
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hugot session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "reviewSentimentPipeline",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("failed to initialize classification pipeline: %w", err)
	}

	return &TransformerClassifier{session: session, pipeline: pipeline}, nil
}

func (t *TransformerClassifier) Name() string { return "transformer" }

func (t *TransformerClassifier) Classify(ctx context.Context, text string) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}

	output, err := t.pipeline.RunPipeline([]string{text})
	if err != nil {
		return Prediction{}, fmt.Errorf("classification pipeline failed: %w", err)
	}
	if output == nil || len(output.ClassificationOutputs) == 0 || len(output.ClassificationOutputs[0]) == 0 {
		return Prediction{}, errors.New("classification pipeline returned no output")
	}

	best := output.ClassificationOutputs[0][0]
	for _, candidate := range output.ClassificationOutputs[0][1:] {
		if candidate.Score > best.Score {
			best = candidate
		}
	}

	label, err := LabelFromModelOutput(best.Label)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %q", err, best.Label)
	}

	score := float64(best.Score)
	if label == models.SentimentNegative {
		score = -score
	}
	return Prediction{Label: label, Score: score}, nil
}

func (t *TransformerClassifier) Close() error {
	if t.session == nil {
		return nil
	}
	return t.session.Destroy()
}
