package models

import "time"

const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
)

type PredictRequest struct {
	Review string `json:"review"`
}

type PredictResponse struct {
	Sentiment string `json:"sentiment"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// PredictionRecord is what the predictor caches, stores and publishes for each review it scores.
type PredictionRecord struct {
	ReviewID   string    `json:"review_id" dynamodbav:"review_id"`
	Review     string    `json:"review" dynamodbav:"review"`
	Sentiment  string    `json:"sentiment" dynamodbav:"sentiment"`
	Score      float64   `json:"score" dynamodbav:"score"`
	Classifier string    `json:"classifier" dynamodbav:"classifier"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at,unixtime"`
	TTL        int64     `json:"-" dynamodbav:"ttl"`
}
