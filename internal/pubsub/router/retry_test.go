package router

import (
	"errors"
	"testing"

	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/stretchr/testify/assert"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestShouldRetry(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{"network_timeout", ierr.WithError(timeoutError{}).Mark(ierr.ErrDependency), true},
		{"validation", ierr.NewError("bad").Mark(ierr.ErrValidation), false},
		{"parse", ierr.NewError("bad json").Mark(ierr.ErrParse), false},
		{"dependency", ierr.NewError("down").Mark(ierr.ErrDependency), true},
		{"batch", ierr.NewBatchError("submit", 3, []error{errors.New("x")}, ierr.ErrPartialSend), true},
		{"unknown", errors.New("boom"), true},
	}

	log := logger.NewNoop()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, shouldRetry(log, tc.err))
		})
	}
}
