package errors

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

// reportableDetailsPrefix tags the safe details written by WithReportableDetails
// so they can be told apart from cockroachdb's own safe details.
const reportableDetailsPrefix = "__json__:"

// ErrorBuilder accumulates hints and details around an error. It is not an
// error itself: every chain ends with Mark, which attaches one of the sentinels
// in errors.go so callers can branch with IsNotFound, IsDependency and friends.
//
//	return ierr.WithError(err).
//		WithHint("Trigger could not be created").
//		WithReportableDetails(map[string]any{"trigger_name": name}).
//		Mark(ierr.ErrDependency)
type ErrorBuilder struct {
	err error
}

func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{err: errors.New(msg)}
}

func NewErrorf(format string, args ...any) *ErrorBuilder {
	return &ErrorBuilder{err: errors.Newf(format, args...)}
}

// WithError wraps an error returned by a client library (stripe, temporal, redis)
func WithError(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// WithHint sets the operator facing message. The HTTP error handler shows the
// first hint GetHints returns, which is the one closest to the root cause.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err = errors.WithHint(b.err, hint)
	return b
}

func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	b.err = errors.WithHintf(b.err, format, args...)
	return b
}

// WithReportableDetails attaches key/values that survive redaction, e.g. the
// subscription or event id. Details that fail to marshal are dropped.
func (b *ErrorBuilder) WithReportableDetails(details map[string]any) *ErrorBuilder {
	marshaled, err := json.Marshal(details)
	if err != nil {
		return b
	}
	b.err = errors.WithSafeDetails(b.err, reportableDetailsPrefix+"%s", errors.Safe(string(marshaled)))
	return b
}

// Mark ends the chain
func (b *ErrorBuilder) Mark(reference error) error {
	b.err = errors.Mark(b.err, reference)
	return b.err
}

// GetHints returns the deduplicated hints of the chain, innermost first
func GetHints(err error) []string {
	return errors.GetAllHints(err)
}

// GetReportableDetails merges the details attached along the chain
func GetReportableDetails(err error) map[string]any {
	details := make(map[string]any)
	for _, sdp := range errors.GetAllSafeDetails(err) {
		for _, payload := range sdp.SafeDetails {
			raw, ok := strings.CutPrefix(payload, reportableDetailsPrefix)
			if !ok {
				continue
			}
			var parsed map[string]any
			if json.Unmarshal([]byte(raw), &parsed) != nil {
				continue
			}
			for k, v := range parsed {
				details[k] = v
			}
		}
	}
	return details
}
