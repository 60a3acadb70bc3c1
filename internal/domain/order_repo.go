package domain

import "context"

// OrderMutation inspects the locked current state and returns the patch to
// persist. A nil patch leaves the order untouched; an error aborts the update.
type OrderMutation func(current *Order) (*OrderPatch, error)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByID(ctx context.Context, orderID string) (*Order, error)
	UpdateOrder(ctx context.Context, orderID string, patch *OrderPatch) (*Order, error)
	// UpdateOrderFunc runs mutate while holding the per-order lock, so the
	// read-check-write sequence is serialized against every other update.
	UpdateOrderFunc(ctx context.Context, orderID string, mutate OrderMutation) (*Order, error)
	ListOrders(ctx context.Context) ([]*Order, error)
	ListOpenOrders(ctx context.Context) ([]*Order, error)
}
