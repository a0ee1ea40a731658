package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/lifecycle/internal/domain/events"
	"github.com/flexprice/lifecycle/internal/publisher"
)

// InMemoryPublisherService provides an in-memory implementation of publisher.EventPublisher for testing
type InMemoryPublisherService struct {
	mu     sync.RWMutex
	events []*events.DomainEvent
	err    error
}

var _ publisher.EventPublisher = (*InMemoryPublisherService)(nil)

// NewInMemoryEventPublisher creates a new instance of InMemoryPublisherService
func NewInMemoryEventPublisher() *InMemoryPublisherService {
	return &InMemoryPublisherService{
		events: make([]*events.DomainEvent, 0),
	}
}

// Publish records the event, or fails with the configured error
func (p *InMemoryPublisherService) Publish(ctx context.Context, event *events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

// FailWith makes every following Publish call return err, nil restores success
func (p *InMemoryPublisherService) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// GetEvents returns all published events
func (p *InMemoryPublisherService) GetEvents() []*events.DomainEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	events := make([]*events.DomainEvent, len(p.events))
	copy(events, p.events)
	return events
}

// GetEventsByName returns the published events with the given name
func (p *InMemoryPublisherService) GetEventsByName(name string) []*events.DomainEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var matched []*events.DomainEvent
	for _, evt := range p.events {
		if evt.EventName == name {
			matched = append(matched, evt)
		}
	}
	return matched
}

// Clear removes all published events and resets failures
func (p *InMemoryPublisherService) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = make([]*events.DomainEvent, 0)
	p.err = nil
}
