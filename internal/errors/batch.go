package errors

import (
	"fmt"
)

// BatchError reports how many sibling tasks of a fan-out failed once every task settled.
// Callers must assume the succeeded tasks already mutated external state.
type BatchError struct {
	Op     string
	Failed int
	Total  int
	Errs   []error
}

func (e *BatchError) Error() string {
	if e.Partial() {
		return fmt.Sprintf("%s: %d of %d failed (partial success)", e.Op, e.Failed, e.Total)
	}
	return fmt.Sprintf("%s: %d of %d failed", e.Op, e.Failed, e.Total)
}

// Partial reports whether at least one sibling task succeeded.
func (e *BatchError) Partial() bool {
	return e.Failed < e.Total
}

// Unwrap exposes the per-task errors to errors.Is / errors.As.
func (e *BatchError) Unwrap() []error {
	return e.Errs
}

// NewBatchError builds a BatchError marked with the given sentinel.
// It returns nil when no task failed.
func NewBatchError(op string, total int, errs []error, reference error) error {
	if len(errs) == 0 {
		return nil
	}
	return WithError(&BatchError{
		Op:     op,
		Failed: len(errs),
		Total:  total,
		Errs:   errs,
	}).
		WithHintf("%d of %d failed, the batch should be redelivered", len(errs), total).
		Mark(reference)
}

// AsBatchError extracts a BatchError from the chain.
func AsBatchError(err error) (*BatchError, bool) {
	var be *BatchError
	if As(err, &be) {
		return be, true
	}
	return nil, false
}
