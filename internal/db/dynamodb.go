package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spacesedan/reviewsense/internal/models"
)

const recordTTL = 24 * time.Hour

type putItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// PredictionStore keeps an audit trail of scored reviews in DynamoDB.
type PredictionStore struct {
	client putItemAPI
	table  string
}

func NewPredictionStore(client putItemAPI, table string) *PredictionStore {
	return &PredictionStore{client: client, table: table}
}

func (s *PredictionStore) Save(ctx context.Context, record models.PredictionRecord) error {
	if record.TTL == 0 {
		record.TTL = record.CreatedAt.Add(recordTTL).Unix()
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("[DynamoDB] failed to marshal prediction record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] failed to store prediction record: %w", err)
	}

	slog.Debug("[DynamoDB] Stored prediction record",
		slog.String("review_id", record.ReviewID),
		slog.String("sentiment", record.Sentiment))
	return nil
}
