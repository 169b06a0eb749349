package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spacesedan/reviewsense/internal/models"
)

// StatusError is returned when the predictor answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("predictor returned status %d", e.StatusCode)
}

// PredictClient talks to the prediction service. It never retries: a failed call is
// surfaced immediately and the user decides whether to submit again.
type PredictClient struct {
	BaseURL string
	Client  *http.Client
}

func NewPredictClient(baseURL string, timeout time.Duration) *PredictClient {
	slog.Info("[PredictClient] Initializing Client",
		slog.String("base_url", baseURL),
		slog.Duration("timeout", timeout))

	return &PredictClient{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Predict posts the raw review and returns the sentiment label the service produced.
func (p *PredictClient) Predict(ctx context.Context, review string) (string, error) {
	var result models.PredictResponse
	start := time.Now()

	err := p.postJSON(ctx, p.BaseURL+PREDICT_PATH, models.PredictRequest{Review: review}, &result)
	if err != nil {
		slog.Error("[PredictClient] Prediction request failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return "", err
	}

	slog.Info("[PredictClient] Prediction request successful",
		slog.String("sentiment", result.Sentiment),
		slog.Duration("elapsed", time.Since(start)))
	return result.Sentiment, nil
}

// HealthCheck reports whether the predictor answers its health endpoint.
func (p *PredictClient) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+HEALTH_PATH, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := p.Client.Do(req)
	if err != nil {
		slog.Debug("[PredictClient] Health check failed", slog.String("error", err.Error()))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

func (p *PredictClient) postJSON(ctx context.Context, endpoint string, input interface{}, output interface{}) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: getPreview(respBody)}
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.Error("[PredictClient] Failed to unmarshal response",
			slog.String("endpoint", endpoint),
			slog.String("raw_response", getPreview(respBody)),
			slog.Int("raw_response_length", len(respBody)))
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

func getPreview(respBody []byte) string {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return raw
}
