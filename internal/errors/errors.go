package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the worker
var (
	ErrNotFound        = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists   = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation      = new(ErrCodeValidation, "validation error")
	ErrParse           = new(ErrCodeParse, "malformed input")
	ErrDependency      = new(ErrCodeDependency, "dependency error")
	ErrBatchScheduling = new(ErrCodeBatchScheduling, "batch scheduling failed")
	ErrPartialSend     = new(ErrCodePartialSend, "partial send failure")
	ErrSystem          = new(ErrCodeSystemError, "system error")
	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrNotFound:        http.StatusNotFound,
		ErrAlreadyExists:   http.StatusConflict,
		ErrValidation:      http.StatusBadRequest,
		ErrParse:           http.StatusBadRequest,
		ErrDependency:      http.StatusBadGateway,
		ErrBatchScheduling: http.StatusInternalServerError,
		ErrPartialSend:     http.StatusInternalServerError,
		ErrSystem:          http.StatusInternalServerError,
	}
)

const (
	ErrCodeSystemError     = "system_error"
	ErrCodeNotFound        = "not_found"
	ErrCodeAlreadyExists   = "already_exists"
	ErrCodeValidation      = "validation_error"
	ErrCodeParse           = "parse_error"
	ErrCodeDependency      = "dependency_error"
	ErrCodeBatchScheduling = "batch_scheduling_error"
	ErrCodePartialSend     = "partial_send_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

// New creates a new InternalError
func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsParse checks if an error is a parse error
func IsParse(err error) bool {
	return errors.Is(err, ErrParse)
}

// IsDependency checks if an error is a dependency error
func IsDependency(err error) bool {
	return errors.Is(err, ErrDependency)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
