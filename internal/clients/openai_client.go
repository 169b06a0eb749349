package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spacesedan/reviewsense/internal/models"
	"github.com/spacesedan/reviewsense/internal/sentiment"
)

const (
	openAIRequestTimeout = 60 * time.Second // Timeout for individual OpenAI API requests
	openAIPrompt         = `You are a movie review sentiment classifier.
Answer with exactly one word: Positive or Negative.
No punctuation, no explanation.`
)

type chatCompleter interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAIClassifier asks a chat model for a one-word verdict.
type OpenAIClassifier struct {
	completions chatCompleter
	model       string
}

func NewOpenAIClassifier(apiKey, model string) (*OpenAIClassifier, error) {
	if apiKey == "" {
		return nil, errors.New("missing OPENAI_API_KEY")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: openAIRequestTimeout}),
	)
	slog.Info("[OpenAIClient] OpenAI client initialized",
		slog.String("model", model),
		slog.Duration("timeout", openAIRequestTimeout))

	return &OpenAIClassifier{completions: client.Chat.Completions, model: model}, nil
}

func (o *OpenAIClassifier) Name() string { return "openai" }

func (o *OpenAIClassifier) Classify(ctx context.Context, text string) (sentiment.Prediction, error) {
	completion, err := o.completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(openAIPrompt),
			openai.UserMessage(text),
		}),
		Model:       openai.F(openai.ChatModel(o.model)),
		Temperature: openai.Float(0),
	})
	if err != nil {
		return sentiment.Prediction{}, fmt.Errorf("openai completion failed: %w", err)
	}

	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return sentiment.Prediction{}, errors.New("openai returned an empty response")
	}

	answer := completion.Choices[0].Message.Content
	label, err := sentiment.LabelFromModelOutput(answer)
	if err != nil {
		slog.Warn("[OpenAIClient] Unexpected classifier answer",
			slog.String("answer", getPreview([]byte(answer))))
		return sentiment.Prediction{}, fmt.Errorf("%w: %q", err, answer)
	}

	score := 1.0
	if label == models.SentimentNegative {
		score = -1.0
	}
	return sentiment.Prediction{Label: label, Score: score}, nil
}
