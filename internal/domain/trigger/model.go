package trigger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"github.com/flexprice/lifecycle/internal/types"
)

// MaxNameLength keeps trigger names within common scheduler id limits
const MaxNameLength = 64

const namePrefix = "cancel"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Payload is delivered to the target action when the trigger fires
type Payload struct {
	CustomerID        string                   `json:"customer_id"`
	SubscriptionID    string                   `json:"subscription_id"`
	ItemID            string                   `json:"item_id"`
	Status            types.SubscriptionStatus `json:"status"`
	CancelAtPeriodEnd bool                     `json:"cancel_at_period_end"`
}

// Trigger is a deferred action fired once at FireAt
type Trigger struct {
	Name    string
	FireAt  time.Time
	Payload Payload
}

// Name derives the trigger name for a subscription item. The same inputs always
// produce the same name, so redelivered notifications target the same trigger and
// reverts can recompute names without a lookup table.
func Name(subscriptionID, itemID string) string {
	name := fmt.Sprintf("%s_%s_%s", namePrefix,
		unsafeNameChars.ReplaceAllString(subscriptionID, "-"),
		unsafeNameChars.ReplaceAllString(itemID, "-"))
	if len(name) <= MaxNameLength {
		return name
	}

	sum := sha256.Sum256([]byte(subscriptionID + "/" + itemID))
	return fmt.Sprintf("%s_%s", namePrefix, hex.EncodeToString(sum[:16]))
}
