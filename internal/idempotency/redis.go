package idempotency

import (
	"context"
	"encoding/json"
	"time"

	"github.com/flexprice/lifecycle/internal/config"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of the redis client used by the store
type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore implements Store with SET NX, which is atomic across replicas
type RedisStore struct {
	client    RedisClient
	keyPrefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisClient dials redis from the configuration
func NewRedisClient(ctx context.Context, cfg *config.Configuration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to redis").
			Mark(ierr.ErrDependency)
	}
	return client, nil
}

// NewRedisStore creates a store on an existing client
func NewRedisStore(client RedisClient, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "lifecycle:idempotency:"
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (s *RedisStore) SetIfAbsent(ctx context.Context, rec *Record, ttl time.Duration) (bool, error) {
	value, err := json.Marshal(rec)
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to encode idempotency record").
			Mark(ierr.ErrSystem)
	}

	created, err := s.client.SetNX(ctx, s.keyPrefix+rec.EventID, value, ttl).Result()
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to record event in redis").
			Mark(ierr.ErrDependency)
	}
	return created, nil
}

func (s *RedisStore) Get(ctx context.Context, eventID string) (*Record, error) {
	raw, err := s.client.Get(ctx, s.keyPrefix+eventID).Result()
	if err == redis.Nil {
		return nil, ierr.NewError("idempotency record not found").
			WithReportableDetails(map[string]any{"event_id": eventID}).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read event from redis").
			Mark(ierr.ErrDependency)
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Stored idempotency record is malformed").
			Mark(ierr.ErrParse)
	}
	return &rec, nil
}

func (s *RedisStore) Delete(ctx context.Context, eventID string) error {
	if err := s.client.Del(ctx, s.keyPrefix+eventID).Err(); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to release event in redis").
			Mark(ierr.ErrDependency)
	}
	return nil
}
