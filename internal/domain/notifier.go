package domain

import "context"

// OperatorNotifier delivers human-readable order events to operators.
// Implementations are best-effort and only log their failures.
type OperatorNotifier interface {
	Notify(ctx context.Context, message string)
}

type Email struct {
	To       string
	Subject  string
	HTMLBody string
}

// Mailer sends customer emails. Unlike OperatorNotifier its error is returned,
// because a failed delivery confirmation blocks completion.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// OrderEventPublisher streams lifecycle events to downstream consumers.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

type OrderEvent struct {
	OrderID     string
	Event       string
	Status      OrderStatus
	Amount      Money
	ProductName string
	Trigger     Trigger
	Description string
}

const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
	EventOrderCompleted     = "order_completed"
	EventPaymentUpdated     = "payment_updated"
)
