package idempotency

import (
	"context"
	"time"

	"github.com/flexprice/lifecycle/internal/cache"
	ierr "github.com/flexprice/lifecycle/internal/errors"
)

// MemoryStore keeps records in the process cache. Only suitable for a single
// replica, used in local mode and tests.
type MemoryStore struct {
	cache cache.Cache
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store on top of the given cache
func NewMemoryStore(c cache.Cache) *MemoryStore {
	return &MemoryStore{cache: c}
}

func (s *MemoryStore) SetIfAbsent(ctx context.Context, rec *Record, ttl time.Duration) (bool, error) {
	span := cache.StartCacheSpan(ctx, "idempotency", "add", map[string]interface{}{
		"event_id": rec.EventID,
	})
	defer cache.FinishSpan(span)

	stored := *rec
	created := s.cache.Add(ctx, cache.GenerateKey(cache.PrefixIdempotency, rec.EventID), &stored, ttl)
	cache.SetSpanSuccess(span)
	return created, nil
}

func (s *MemoryStore) Get(ctx context.Context, eventID string) (*Record, error) {
	span := cache.StartCacheSpan(ctx, "idempotency", "get", map[string]interface{}{
		"event_id": eventID,
	})
	defer cache.FinishSpan(span)

	v, ok := s.cache.Get(ctx, cache.GenerateKey(cache.PrefixIdempotency, eventID))
	if !ok {
		cache.SetSpanSuccess(span)
		return nil, ierr.NewError("idempotency record not found").
			WithReportableDetails(map[string]any{"event_id": eventID}).
			Mark(ierr.ErrNotFound)
	}
	rec, ok := v.(*Record)
	if !ok {
		err := ierr.NewErrorf("unexpected cached value %T", v).
			Mark(ierr.ErrSystem)
		cache.SetSpanError(span, err)
		return nil, err
	}
	cache.SetSpanSuccess(span)
	copied := *rec
	return &copied, nil
}

func (s *MemoryStore) Delete(ctx context.Context, eventID string) error {
	s.cache.Delete(ctx, cache.GenerateKey(cache.PrefixIdempotency, eventID))
	return nil
}
