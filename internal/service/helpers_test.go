package service

import (
	"context"
	"fmt"
	"time"

	"github.com/flexprice/lifecycle/internal/domain/subscription"
	"github.com/flexprice/lifecycle/internal/idempotency"
	"github.com/flexprice/lifecycle/internal/testutil"
	"github.com/flexprice/lifecycle/internal/types"
)

func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	return NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetGate(),
		s.GetScheduler(),
		s.GetMetering(),
		s.GetPublisher(),
	)
}

// testSubscription builds a subscription with one item per period end
func testSubscription(id string, periodEnds ...time.Time) *subscription.Snapshot {
	sub := &subscription.Snapshot{
		ID:                id,
		CustomerID:        "cus_" + id,
		Status:            types.SubscriptionStatusActive,
		CancelAtPeriodEnd: true,
	}
	for i, end := range periodEnds {
		sub.Items = append(sub.Items, subscription.Item{
			ID:        fmt.Sprintf("si_%s_%d", id, i),
			PriceID:   fmt.Sprintf("price_%d", i),
			ProductID: fmt.Sprintf("prod_%d", i),
			Quantity:  1,
			PeriodEnd: end.Unix(),
		})
		sub.CurrentPeriodEnd = max(sub.CurrentPeriodEnd, end.Unix())
	}
	return sub
}

// unavailableStore fails every call, as an unreachable idempotency backend would
type unavailableStore struct {
	err error
}

var _ idempotency.Store = (*unavailableStore)(nil)

func (s *unavailableStore) SetIfAbsent(context.Context, *idempotency.Record, time.Duration) (bool, error) {
	return false, s.err
}

func (s *unavailableStore) Get(context.Context, string) (*idempotency.Record, error) {
	return nil, s.err
}

func (s *unavailableStore) Delete(context.Context, string) error {
	return s.err
}
