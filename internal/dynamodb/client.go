package dynamodb

import (
	"context"
	"fmt"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/flexprice/lifecycle/internal/config"
)

// API is the subset of the DynamoDB client used by the worker
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type Client struct {
	db API
}

// NewClient returns nil when DynamoDB is not in use
func NewClient(cfg *config.Configuration) (*Client, error) {
	if !cfg.DynamoDB.InUse {
		return nil, nil
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
		awsConfig.WithRegion(cfg.DynamoDB.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	return &Client{
		db: dynamodb.NewFromConfig(awsCfg),
	}, nil
}

// NewClientWithAPI wraps an existing API implementation
func NewClientWithAPI(api API) *Client {
	return &Client{db: api}
}

func (c *Client) DB() API {
	return c.db
}
