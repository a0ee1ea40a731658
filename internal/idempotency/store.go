package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Record marks a logical event as processed
type Record struct {
	EventID     string    `json:"event_id" dynamodbav:"pk"`
	Fingerprint string    `json:"fingerprint" dynamodbav:"fingerprint"`
	Processed   bool      `json:"processed" dynamodbav:"processed"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
	// ExpiresAt is the unix time after which the store may drop the record
	ExpiresAt int64 `json:"expires_at,omitempty" dynamodbav:"expires_at,omitempty"`
}

// Store persists idempotency records
type Store interface {
	// SetIfAbsent records rec unless a record with the same event id exists.
	// It returns false when the event id was already recorded. The check and the
	// write must be atomic: two concurrent callers can never both get true.
	SetIfAbsent(ctx context.Context, rec *Record, ttl time.Duration) (bool, error)

	// Get returns the record for the event id or an ErrNotFound error
	Get(ctx context.Context, eventID string) (*Record, error)

	// Delete drops the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, eventID string) error
}

// Fingerprint hashes the JSON form of a payload
func Fingerprint(payload interface{}) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(raw)
	return hex.EncodeToString(hash[:8]), nil
}
