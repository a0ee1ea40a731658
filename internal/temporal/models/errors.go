package models

import (
	ierr "github.com/flexprice/lifecycle/internal/errors"
)

// Error types for Temporal operations using existing error patterns
var (
	ErrInvalidWorkflowInput = ierr.NewError("invalid workflow input").Mark(ierr.ErrValidation)
	ErrClientNotInitialized = ierr.NewError("temporal client not initialized").Mark(ierr.ErrSystem)
)

// NewTemporalValidationError creates a new temporal validation error
func NewTemporalValidationError(message string) error {
	return ierr.NewError(message).Mark(ierr.ErrValidation)
}
