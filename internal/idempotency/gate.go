package idempotency

import (
	"context"
	"time"

	"github.com/flexprice/lifecycle/internal/config"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/logger"
)

// Gate guarantees that side effects keyed by an event id run at most once
type Gate interface {
	// Ensure records the event id if it is new. A duplicate result means the caller
	// must skip its side effects. Any error means the store could not be consulted
	// and the caller must not perform the side effect either.
	Ensure(ctx context.Context, eventID string, payload interface{}) (*Result, error)

	// Release forgets an event id so a redelivery runs the side effects again.
	// Callers release after their side effects failed before completing.
	Release(ctx context.Context, eventID string) error
}

// Result is the outcome of a gate check
type Result struct {
	IsDuplicate bool
	Record      *Record
}

type gate struct {
	store  Store
	ttl    time.Duration
	logger *logger.Logger
}

// NewGate creates a gate on top of the given store
func NewGate(store Store, cfg *config.Configuration, logger *logger.Logger) Gate {
	return &gate{
		store:  store,
		ttl:    cfg.Idempotency.TTL,
		logger: logger,
	}
}

func (g *gate) Ensure(ctx context.Context, eventID string, payload interface{}) (*Result, error) {
	if eventID == "" {
		return nil, ierr.NewError("event id is required").
			WithHint("Idempotency check needs an event id").
			Mark(ierr.ErrValidation)
	}

	fingerprint, err := Fingerprint(payload)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to fingerprint idempotency payload").
			Mark(ierr.ErrValidation)
	}

	now := time.Now().UTC()
	rec := &Record{
		EventID:     eventID,
		Fingerprint: fingerprint,
		Processed:   true,
		CreatedAt:   now,
	}
	if g.ttl > 0 {
		rec.ExpiresAt = now.Add(g.ttl).Unix()
	}

	created, err := g.store.SetIfAbsent(ctx, rec, g.ttl)
	if err != nil {
		g.logger.Errorw("idempotency store unavailable",
			"event_id", eventID,
			"error", err,
		)
		return nil, ierr.WithError(err).
			WithHint("Idempotency store could not be consulted").
			WithReportableDetails(map[string]any{"event_id": eventID}).
			Mark(ierr.ErrDependency)
	}

	if created {
		return &Result{IsDuplicate: false, Record: rec}, nil
	}

	// Only used for diagnostics, the duplicate decision is already final.
	existing, err := g.store.Get(ctx, eventID)
	if err != nil {
		g.logger.Warnw("duplicate event, could not load existing record",
			"event_id", eventID,
			"error", err,
		)
		return &Result{IsDuplicate: true}, nil
	}

	if existing.Fingerprint != fingerprint {
		g.logger.Warnw("duplicate event id with a different payload",
			"event_id", eventID,
			"existing_fingerprint", existing.Fingerprint,
			"fingerprint", fingerprint,
		)
	}

	return &Result{IsDuplicate: true, Record: existing}, nil
}

func (g *gate) Release(ctx context.Context, eventID string) error {
	if err := g.store.Delete(ctx, eventID); err != nil {
		g.logger.Errorw("failed to release idempotency record",
			"event_id", eventID,
			"error", err,
		)
		return ierr.WithError(err).
			WithHint("Idempotency record could not be released").
			WithReportableDetails(map[string]any{"event_id": eventID}).
			Mark(ierr.ErrDependency)
	}
	return nil
}
