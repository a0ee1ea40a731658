package idempotency

import (
	"context"

	"github.com/flexprice/lifecycle/internal/cache"
	"github.com/flexprice/lifecycle/internal/config"
	dynamoclient "github.com/flexprice/lifecycle/internal/dynamodb"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/types"
)

// NewStore builds the store selected by idempotency.backend
func NewStore(
	cfg *config.Configuration,
	log *logger.Logger,
	memCache *cache.InMemoryCache,
	dynamoClient *dynamoclient.Client,
) (Store, error) {
	log.Infow("initializing idempotency store", "backend", cfg.Idempotency.Backend)

	switch cfg.Idempotency.Backend {
	case types.IdempotencyBackendRedis:
		client, err := NewRedisClient(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.Redis.KeyPrefix), nil
	case types.IdempotencyBackendDynamoDB:
		if dynamoClient == nil {
			return nil, ierr.NewError("dynamodb client is not initialized but it is the idempotency backend").
				WithHint("Set dynamodb.in_use to true").
				Mark(ierr.ErrValidation)
		}
		return NewDynamoDBStore(dynamoClient, cfg.DynamoDB.IdempotencyTableName), nil
	case types.IdempotencyBackendMemory:
		log.Warn("using in-memory idempotency store, duplicates are only detected within this process")
		return NewMemoryStore(memCache), nil
	default:
		return nil, ierr.NewErrorf("unknown idempotency backend: %s", cfg.Idempotency.Backend).
			Mark(ierr.ErrValidation)
	}
}
