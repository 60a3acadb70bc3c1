package domain

import "time"

// FulfillmentScheduler arms one automatic completion timer per order.
type FulfillmentScheduler interface {
	Schedule(orderID string, delay time.Duration)
	Cancel(orderID string) bool
}
