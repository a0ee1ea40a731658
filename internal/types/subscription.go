package types

import "strings"

// SubscriptionStatus mirrors the billing provider's subscription status values
type SubscriptionStatus string

const (
	SubscriptionStatusActive            SubscriptionStatus = "active"
	SubscriptionStatusTrialing          SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue           SubscriptionStatus = "past_due"
	SubscriptionStatusUnpaid            SubscriptionStatus = "unpaid"
	SubscriptionStatusIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionStatusPaused            SubscriptionStatus = "paused"
	SubscriptionStatusCanceled          SubscriptionStatus = "canceled"
)

// SubscriptionTier is the plan tier reported on usage records
type SubscriptionTier string

const (
	SubscriptionTierPro        SubscriptionTier = "PRO"
	SubscriptionTierTeam       SubscriptionTier = "TEAM"
	SubscriptionTierEnterprise SubscriptionTier = "ENTERPRISE"
)

// IsEnterpriseBilled reports whether usage for this tier is billed on the enterprise meter.
func (t SubscriptionTier) IsEnterpriseBilled() bool {
	switch SubscriptionTier(strings.ToUpper(string(t))) {
	case SubscriptionTierTeam, SubscriptionTierEnterprise:
		return true
	default:
		return false
	}
}
