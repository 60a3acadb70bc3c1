package orderdto

import "github.com/LavaJover/wolf-checkout-service/internal/domain"

type CreateOrderOutput struct {
	Order      *domain.Order
	InvoiceURL string
}

// CompletionResult reports what a completion call did. Exactly one of
// Completed, AlreadyCompleted or a non-empty SkipReason is set on success.
type CompletionResult struct {
	Order            *domain.Order
	Trigger          domain.Trigger
	Completed        bool
	AlreadyCompleted bool
	SkipReason       string
	FulfillmentID    string
}
