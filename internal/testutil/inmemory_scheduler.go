package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/lifecycle/internal/domain/trigger"
	ierr "github.com/flexprice/lifecycle/internal/errors"
)

// SchedulerCall records one call made to the in-memory scheduler
type SchedulerCall struct {
	Op      string
	Name    string
	Trigger *trigger.Trigger
}

// Scheduler operations recorded in SchedulerCall.Op
const (
	SchedulerOpCreate = "create"
	SchedulerOpUpdate = "update"
	SchedulerOpDelete = "delete"
)

// InMemoryScheduler keeps triggers in a map and mimics the conflict and
// not found behaviour of a real scheduler
type InMemoryScheduler struct {
	mu       sync.Mutex
	triggers map[string]*trigger.Trigger
	calls    []SchedulerCall
	failures map[string]error
}

// NewInMemoryScheduler creates an empty scheduler
func NewInMemoryScheduler() *InMemoryScheduler {
	return &InMemoryScheduler{
		triggers: make(map[string]*trigger.Trigger),
		failures: make(map[string]error),
	}
}

// FailOn makes every operation on the named trigger return err, nil clears it
func (s *InMemoryScheduler) FailOn(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, name)
		return
	}
	s.failures[name] = err
}

// Seed stores a trigger without recording a call
func (s *InMemoryScheduler) Seed(t *trigger.Trigger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *t
	s.triggers[t.Name] = &copied
}

func (s *InMemoryScheduler) CreateTrigger(ctx context.Context, t *trigger.Trigger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, SchedulerCall{Op: SchedulerOpCreate, Name: t.Name, Trigger: t})
	if err, ok := s.failures[t.Name]; ok {
		return err
	}
	if _, exists := s.triggers[t.Name]; exists {
		return ierr.NewErrorf("trigger %s already exists", t.Name).
			Mark(ierr.ErrAlreadyExists)
	}
	copied := *t
	s.triggers[t.Name] = &copied
	return nil
}

func (s *InMemoryScheduler) UpdateTrigger(ctx context.Context, t *trigger.Trigger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, SchedulerCall{Op: SchedulerOpUpdate, Name: t.Name, Trigger: t})
	if err, ok := s.failures[t.Name]; ok {
		return err
	}
	if _, exists := s.triggers[t.Name]; !exists {
		return ierr.NewErrorf("trigger %s not found", t.Name).
			Mark(ierr.ErrNotFound)
	}
	copied := *t
	s.triggers[t.Name] = &copied
	return nil
}

func (s *InMemoryScheduler) DeleteTrigger(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, SchedulerCall{Op: SchedulerOpDelete, Name: name})
	if err, ok := s.failures[name]; ok {
		return err
	}
	if _, exists := s.triggers[name]; !exists {
		return ierr.NewErrorf("trigger %s not found", name).
			Mark(ierr.ErrNotFound)
	}
	delete(s.triggers, name)
	return nil
}

// GetTrigger returns the stored trigger with the given name
func (s *InMemoryScheduler) GetTrigger(name string) (*trigger.Trigger, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.triggers[name]
	return t, ok
}

// Triggers returns the number of stored triggers
func (s *InMemoryScheduler) Triggers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.triggers)
}

// Calls returns every recorded call
func (s *InMemoryScheduler) Calls() []SchedulerCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	calls := make([]SchedulerCall, len(s.calls))
	copy(calls, s.calls)
	return calls
}

// CallsByOp returns the recorded calls of one operation
func (s *InMemoryScheduler) CallsByOp(op string) []SchedulerCall {
	var matched []SchedulerCall
	for _, call := range s.Calls() {
		if call.Op == op {
			matched = append(matched, call)
		}
	}
	return matched
}
