package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
)

type OrderEvent struct {
	OrderID     string    `json:"order_id"`
	Event       string    `json:"event"`
	Status      string    `json:"status"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	ProductName string    `json:"product_name"`
	Trigger     string    `json:"trigger,omitempty"`
	Description string    `json:"description,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// OrderEventPublisher serializes lifecycle events as JSON keyed by order id,
// so every event of one order lands on the same partition.
type OrderEventPublisher struct {
	port  domain.PublisherPort
	topic string
	now   func() time.Time
}

func NewOrderEventPublisher(port domain.PublisherPort, topic string) *OrderEventPublisher {
	return &OrderEventPublisher{
		port:  port,
		topic: topic,
		now:   time.Now,
	}
}

func (p *OrderEventPublisher) PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	payload, err := json.Marshal(OrderEvent{
		OrderID:     event.OrderID,
		Event:       event.Event,
		Status:      string(event.Status),
		Amount:      event.Amount.Value.StringFixed(2),
		Currency:    event.Amount.Currency,
		ProductName: event.ProductName,
		Trigger:     string(event.Trigger),
		Description: event.Description,
		OccurredAt:  p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	if err := p.port.Publish(ctx, p.topic, domain.Message{
		Key:   []byte(event.OrderID),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("failed to publish %s for order %s: %w", event.Event, event.OrderID, err)
	}
	return nil
}
