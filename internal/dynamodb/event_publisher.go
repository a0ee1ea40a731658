package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/domain/events"
	"github.com/flexprice/lifecycle/internal/logger"
)

type EventPublisher struct {
	client    *Client
	tableName string
	logger    *logger.Logger
}

func NewEventPublisher(client *Client, cfg *config.Configuration, logger *logger.Logger) *EventPublisher {
	return &EventPublisher{
		client:    client,
		tableName: cfg.DynamoDB.EventTableName,
		logger:    logger,
	}
}

type DynamoEvent struct {
	PK         string    `dynamodbav:"pk"` // Subject
	SK         string    `dynamodbav:"sk"` // EventID
	EventName  string    `dynamodbav:"event_name"`
	Detail     string    `dynamodbav:"detail"`
	Timestamp  time.Time `dynamodbav:"timestamp"`
	Source     string    `dynamodbav:"source"`
	IngestedAt time.Time `dynamodbav:"ingested_at"`
}

func (p *EventPublisher) Publish(ctx context.Context, event *events.DomainEvent) error {
	detail, err := json.Marshal(event.Detail)
	if err != nil {
		return fmt.Errorf("failed to marshal event detail: %w", err)
	}

	dynamoEvent := &DynamoEvent{
		PK:         event.Subject,
		SK:         event.ID,
		EventName:  event.EventName,
		Detail:     string(detail),
		Timestamp:  event.Timestamp,
		Source:     event.Source,
		IngestedAt: time.Now(),
	}

	item, err := attributevalue.MarshalMap(dynamoEvent)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(p.tableName),
		Item:      item,
	}

	p.logger.Debugw("publishing event to dynamodb",
		"event_id", event.ID,
		"subject", event.Subject,
		"event_name", event.EventName,
	)

	_, err = p.client.db.PutItem(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to put item in dynamodb: %w", err)
	}

	return nil
}
