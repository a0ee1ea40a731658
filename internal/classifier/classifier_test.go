package classifier

import (
	"testing"

	"github.com/flexprice/lifecycle/internal/domain/subscription"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		snapshot subscription.Snapshot
		expected Verdict
		changes  Changes
	}{
		{
			name: "no_relevant_diff_is_other_change",
			snapshot: subscription.Snapshot{
				ID:     "sub_123",
				Status: types.SubscriptionStatusActive,
			},
			expected: OtherChange,
		},
		{
			name: "cancel_at_period_end_set_is_cancellation",
			snapshot: subscription.Snapshot{
				ID:                "sub_123",
				Status:            types.SubscriptionStatusActive,
				CancelAtPeriodEnd: true,
			},
			expected: CancellationRequested,
		},
		{
			name: "cancel_at_period_end_unchanged_but_true_is_cancellation",
			snapshot: subscription.Snapshot{
				ID:                "sub_123",
				Status:            types.SubscriptionStatusActive,
				CancelAtPeriodEnd: true,
				Previous: subscription.ChangeSet{
					CurrentPeriodEnd: subscription.Changed(int64(1700000000)),
				},
			},
			expected: CancellationRequested,
			changes:  Changes{CurrentPeriodEndChanged: true},
		},
		{
			name: "status_canceled_is_cancellation",
			snapshot: subscription.Snapshot{
				ID:     "sub_123",
				Status: types.SubscriptionStatusCanceled,
				Previous: subscription.ChangeSet{
					Status: subscription.Changed(types.SubscriptionStatusActive),
				},
			},
			expected: CancellationRequested,
			changes:  Changes{StatusChanged: true},
		},
		{
			name: "cancel_at_cleared_is_revert",
			snapshot: subscription.Snapshot{
				ID:     "sub_123",
				Status: types.SubscriptionStatusActive,
				Previous: subscription.ChangeSet{
					CancelAt: subscription.Changed(lo.ToPtr(int64(1234567890))),
				},
			},
			expected: CancellationReverted,
		},
		{
			name: "cancel_at_period_end_true_to_false_is_revert",
			snapshot: subscription.Snapshot{
				ID:     "sub_123",
				Status: types.SubscriptionStatusActive,
				Previous: subscription.ChangeSet{
					CancelAtPeriodEnd: subscription.Changed(true),
				},
			},
			expected: CancellationReverted,
			changes:  Changes{CancelAtPeriodEndChanged: true},
		},
		{
			name: "cancel_at_previously_null_is_not_revert",
			snapshot: subscription.Snapshot{
				ID:     "sub_123",
				Status: types.SubscriptionStatusActive,
				Previous: subscription.ChangeSet{
					CancelAt: subscription.Changed[*int64](nil),
				},
			},
			expected: OtherChange,
		},
		{
			name: "cancel_at_moved_to_other_value_is_not_revert",
			snapshot: subscription.Snapshot{
				ID:       "sub_123",
				Status:   types.SubscriptionStatusActive,
				CancelAt: lo.ToPtr(int64(1800000000)),
				Previous: subscription.ChangeSet{
					CancelAt: subscription.Changed(lo.ToPtr(int64(1234567890))),
				},
			},
			expected: OtherChange,
		},
		{
			name: "cancel_at_period_end_false_to_true_in_diff_is_cancellation",
			snapshot: subscription.Snapshot{
				ID:                "sub_123",
				Status:            types.SubscriptionStatusActive,
				CancelAtPeriodEnd: true,
				Previous: subscription.ChangeSet{
					CancelAtPeriodEnd: subscription.Changed(false),
				},
			},
			expected: CancellationRequested,
			changes:  Changes{CancelAtPeriodEndChanged: true},
		},
		{
			name: "revert_and_cancellation_together_is_cancellation",
			snapshot: subscription.Snapshot{
				ID:                "sub_123",
				Status:            types.SubscriptionStatusActive,
				CancelAtPeriodEnd: true,
				Previous: subscription.ChangeSet{
					CancelAt: subscription.Changed(lo.ToPtr(int64(1234567890))),
				},
			},
			expected: CancellationRequested,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Classify(&tc.snapshot)
			assert.Equal(t, tc.expected, result.Verdict)
			assert.Equal(t, tc.changes, result.Changes)
		})
	}
}
