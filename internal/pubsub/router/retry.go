package router

import (
	"net"

	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/logger"
)

// shouldRetry separates transient failures from malformed input, which would fail
// the same way on every attempt
func shouldRetry(logger *logger.Logger, err error) bool {
	// Network errors
	var netErr net.Error
	if ierr.As(err, &netErr) && netErr.Timeout() {
		logger.Debugw("retrying due to network timeout", "error", netErr)
		return true
	}

	// Input errors (don't retry)
	if ierr.IsValidation(err) || ierr.IsParse(err) {
		logger.Debugw("non-retryable input error", "error", err)
		return false
	}

	// Batch failures, dependency failures and unknown errors are retried
	return true
}
