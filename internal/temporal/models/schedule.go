package models

import (
	"context"

	"go.temporal.io/sdk/client"
)

// ScheduleClient is the subset of the SDK schedule client used for triggers
type ScheduleClient interface {
	// Create registers a new schedule
	Create(ctx context.Context, options client.ScheduleOptions) (ScheduleHandle, error)
	// GetHandle returns a handle to an existing schedule without contacting the server
	GetHandle(ctx context.Context, scheduleID string) ScheduleHandle
}

// ScheduleHandle represents a handle to a Temporal schedule
type ScheduleHandle interface {
	// GetID returns the schedule id
	GetID() string
	// Delete deletes the schedule
	Delete(ctx context.Context) error
	// Describe gets schedule information
	Describe(ctx context.Context) (*client.ScheduleDescription, error)
	// Update updates the schedule
	Update(ctx context.Context, options client.ScheduleUpdateOptions) error
}

// scheduleClient wraps the SDK schedule client
type scheduleClient struct {
	client client.ScheduleClient
}

// NewScheduleClient creates a new schedule client wrapper
func NewScheduleClient(c client.ScheduleClient) ScheduleClient {
	return &scheduleClient{client: c}
}

func (s *scheduleClient) Create(ctx context.Context, options client.ScheduleOptions) (ScheduleHandle, error) {
	handle, err := s.client.Create(ctx, options)
	if err != nil {
		return nil, err
	}
	return NewScheduleHandle(handle), nil
}

func (s *scheduleClient) GetHandle(ctx context.Context, scheduleID string) ScheduleHandle {
	return NewScheduleHandle(s.client.GetHandle(ctx, scheduleID))
}

// scheduleHandle wraps the SDK schedule handle
type scheduleHandle struct {
	handle client.ScheduleHandle
}

// NewScheduleHandle creates a new schedule handle wrapper
func NewScheduleHandle(handle client.ScheduleHandle) ScheduleHandle {
	return &scheduleHandle{
		handle: handle,
	}
}

func (s *scheduleHandle) GetID() string {
	return s.handle.GetID()
}

func (s *scheduleHandle) Delete(ctx context.Context) error {
	return s.handle.Delete(ctx)
}

func (s *scheduleHandle) Describe(ctx context.Context) (*client.ScheduleDescription, error) {
	return s.handle.Describe(ctx)
}

func (s *scheduleHandle) Update(ctx context.Context, options client.ScheduleUpdateOptions) error {
	return s.handle.Update(ctx, options)
}
