package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Scope represents the scope of idempotency
type Scope string

const (
	// ScopeSubscriptionCancelled guards the cancellation side effects of a subscription
	ScopeSubscriptionCancelled Scope = "subscription-cancelled"

	// ScopeMeterEvent derives the provider idempotency key of a meter event submission
	ScopeMeterEvent Scope = "meter_event"
)

// Generator generates idempotency keys
type Generator struct{}

// NewGenerator creates a new idempotency key generator
func NewGenerator() *Generator {
	return &Generator{}
}

// EventID builds the human readable gate id for a scope and its subject,
// ex subscription-cancelled-sub_123
func (g *Generator) EventID(scope Scope, subject string) string {
	return fmt.Sprintf("%s-%s", scope, subject)
}

// GenerateKey generates an idempotency key from a scope and parameters
func (g *Generator) GenerateKey(scope Scope, params map[string]interface{}) string {
	// Sort params for consistent hashing
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(scope))
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(":%s=%v", k, params[k]))
	}

	hash := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%s-%s", scope, hex.EncodeToString(hash[:8])) // First 8 bytes for readability
}

// MeterEventKey derives the submission key of a meter event from its identifier and timestamp
func (g *Generator) MeterEventKey(identifier string, timestamp int64) string {
	return g.GenerateKey(ScopeMeterEvent, map[string]interface{}{
		"identifier": identifier,
		"timestamp":  timestamp,
	})
}
