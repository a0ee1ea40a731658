package idempotency

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamotypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	ierr "github.com/flexprice/lifecycle/internal/errors"
	dynamoclient "github.com/flexprice/lifecycle/internal/dynamodb"
)

// DynamoDBStore implements Store with a conditional PutItem on the partition key
type DynamoDBStore struct {
	client    *dynamoclient.Client
	tableName string
}

var _ Store = (*DynamoDBStore)(nil)

// NewDynamoDBStore creates a store writing to tableName
func NewDynamoDBStore(client *dynamoclient.Client, tableName string) *DynamoDBStore {
	return &DynamoDBStore{
		client:    client,
		tableName: tableName,
	}
}

func (s *DynamoDBStore) SetIfAbsent(ctx context.Context, rec *Record, _ time.Duration) (bool, error) {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to encode idempotency record").
			Mark(ierr.ErrSystem)
	}

	_, err = s.client.DB().PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(pk)"),
	})
	if err != nil {
		var conditionFailed *dynamotypes.ConditionalCheckFailedException
		if ierr.As(err, &conditionFailed) {
			return false, nil
		}
		return false, ierr.WithError(err).
			WithHint("Failed to record event in dynamodb").
			Mark(ierr.ErrDependency)
	}
	return true, nil
}

func (s *DynamoDBStore) Get(ctx context.Context, eventID string) (*Record, error) {
	out, err := s.client.DB().GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]dynamotypes.AttributeValue{
			"pk": &dynamotypes.AttributeValueMemberS{Value: eventID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read event from dynamodb").
			Mark(ierr.ErrDependency)
	}
	if len(out.Item) == 0 {
		return nil, ierr.NewError("idempotency record not found").
			WithReportableDetails(map[string]any{"event_id": eventID}).
			Mark(ierr.ErrNotFound)
	}

	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Stored idempotency record is malformed").
			Mark(ierr.ErrParse)
	}
	return &rec, nil
}

func (s *DynamoDBStore) Delete(ctx context.Context, eventID string) error {
	_, err := s.client.DB().DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]dynamotypes.AttributeValue{
			"pk": &dynamotypes.AttributeValueMemberS{Value: eventID},
		},
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to release event in dynamodb").
			Mark(ierr.ErrDependency)
	}
	return nil
}
