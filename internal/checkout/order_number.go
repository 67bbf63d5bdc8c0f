package checkout

import (
	"fmt"
	"math/rand"
	"time"
)

// newOrderNumber builds a human-readable order number from a millisecond
// timestamp tail and a 4-digit random suffix. The unique index on
// orders.order_number is what actually guarantees uniqueness; callers
// regenerate and retry on a conflict.
func newOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%010d%04d", now.UnixMilli()%10_000_000_000, rand.Intn(10_000))
}
