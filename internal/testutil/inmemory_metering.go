package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/lifecycle/internal/domain/usage"
)

// MeterSubmission is one recorded call to the metering client
type MeterSubmission struct {
	Event          *usage.MeterEvent
	IdempotencyKey string
}

// InMemoryMeteringClient records submissions and fails the identifiers it is told to
type InMemoryMeteringClient struct {
	mu          sync.Mutex
	submissions []MeterSubmission
	failures    map[string]error
}

// NewInMemoryMeteringClient creates a metering client that accepts everything
func NewInMemoryMeteringClient() *InMemoryMeteringClient {
	return &InMemoryMeteringClient{
		failures: make(map[string]error),
	}
}

// FailOn makes submissions with the given identifier return err, nil clears it
func (m *InMemoryMeteringClient) FailOn(identifier string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, identifier)
		return
	}
	m.failures[identifier] = err
}

func (m *InMemoryMeteringClient) Submit(ctx context.Context, event *usage.MeterEvent, idempotencyKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.submissions = append(m.submissions, MeterSubmission{Event: event, IdempotencyKey: idempotencyKey})
	if err, ok := m.failures[event.Identifier]; ok {
		return err
	}
	return nil
}

// Submissions returns every attempted submission, failed ones included
func (m *InMemoryMeteringClient) Submissions() []MeterSubmission {
	m.mu.Lock()
	defer m.mu.Unlock()
	submissions := make([]MeterSubmission, len(m.submissions))
	copy(submissions, m.submissions)
	return submissions
}

// SubmissionFor returns the submission with the given identifier
func (m *InMemoryMeteringClient) SubmissionFor(identifier string) (MeterSubmission, bool) {
	for _, sub := range m.Submissions() {
		if sub.Event.Identifier == identifier {
			return sub, true
		}
	}
	return MeterSubmission{}, false
}
