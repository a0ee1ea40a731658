package subscription

import (
	"encoding/json"
	"math"

	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/types"
)

// Previous attribute keys understood by the change set
const (
	AttrCancelAt          = "cancel_at"
	AttrCancelAtPeriodEnd = "cancel_at_period_end"
	AttrCurrentPeriodEnd  = "current_period_end"
	AttrStatus            = "status"
)

// Field is the prior value of a single attribute. Present is false when the
// attribute did not change in the notification.
type Field[T any] struct {
	Present bool
	Value   T
}

// Changed returns a present field holding the prior value v
func Changed[T any](v T) Field[T] {
	return Field[T]{Present: true, Value: v}
}

// ChangeSet is the typed form of a notification's previous attributes. Only the
// attributes the classifier compares are kept; everything else is dropped.
type ChangeSet struct {
	// CancelAt prior value, a nil Value means it was previously null
	CancelAt          Field[*int64]
	CancelAtPeriodEnd Field[bool]
	CurrentPeriodEnd  Field[int64]
	Status            Field[types.SubscriptionStatus]
}

// IsEmpty reports whether none of the tracked attributes changed
func (c ChangeSet) IsEmpty() bool {
	return !c.CancelAt.Present && !c.CancelAtPeriodEnd.Present &&
		!c.CurrentPeriodEnd.Present && !c.Status.Present
}

// ParseChangeSet converts the provider's sparse previous attributes map.
// A nil or empty map yields an empty change set.
func ParseChangeSet(previous map[string]interface{}) (ChangeSet, error) {
	var cs ChangeSet

	if raw, ok := previous[AttrCancelAt]; ok {
		v, err := nullableInt(AttrCancelAt, raw)
		if err != nil {
			return ChangeSet{}, err
		}
		cs.CancelAt = Changed(v)
	}

	if raw, ok := previous[AttrCancelAtPeriodEnd]; ok {
		switch v := raw.(type) {
		case bool:
			cs.CancelAtPeriodEnd = Changed(v)
		case nil:
			cs.CancelAtPeriodEnd = Changed(false)
		default:
			return ChangeSet{}, invalidAttribute(AttrCancelAtPeriodEnd, raw)
		}
	}

	if raw, ok := previous[AttrCurrentPeriodEnd]; ok {
		v, err := nullableInt(AttrCurrentPeriodEnd, raw)
		if err != nil {
			return ChangeSet{}, err
		}
		var end int64
		if v != nil {
			end = *v
		}
		cs.CurrentPeriodEnd = Changed(end)
	}

	if raw, ok := previous[AttrStatus]; ok {
		switch v := raw.(type) {
		case string:
			cs.Status = Changed(types.SubscriptionStatus(v))
		case nil:
			cs.Status = Changed(types.SubscriptionStatus(""))
		default:
			return ChangeSet{}, invalidAttribute(AttrStatus, raw)
		}
	}

	return cs, nil
}

func nullableInt(attr string, raw interface{}) (*int64, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case float64:
		if v != math.Trunc(v) {
			return nil, invalidAttribute(attr, raw)
		}
		i := int64(v)
		return &i, nil
	case int64:
		return &v, nil
	case int:
		i := int64(v)
		return &i, nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return nil, invalidAttribute(attr, raw)
		}
		return &i, nil
	default:
		return nil, invalidAttribute(attr, raw)
	}
}

func invalidAttribute(attr string, raw interface{}) error {
	return ierr.NewErrorf("unexpected type %T for previous attribute %s", raw, attr).
		WithHint("Previous attributes could not be parsed").
		Mark(ierr.ErrParse)
}
