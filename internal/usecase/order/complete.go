package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	orderdto "github.com/LavaJover/wolf-checkout-service/internal/usecase/dto/order"
)

const (
	skipAwaitingPayment = "awaiting_payment"
	skipCancelled       = "cancelled"
)

// CompleteOrder delivers an order exactly once. The timer and the admin both
// call it; the read-check-write runs under the store's per-order lock, so a
// second caller always observes the first caller's outcome.
//
// The attempt is audited before the delivery email is sent. When the email
// fails only that audit entry is persisted, the status stays open and
// ErrNotificationFailed is returned so the call can be retried. A failed
// automatic attempt re-arms the timer with a fresh delay.
func (uc *DefaultOrderUsecase) CompleteOrder(ctx context.Context, orderID string, trigger domain.Trigger) (*orderdto.CompletionResult, error) {
	result := &orderdto.CompletionResult{Trigger: trigger}
	var sendErr error

	updated, err := uc.OrderRepo.UpdateOrderFunc(ctx, orderID, func(current *domain.Order) (*domain.OrderPatch, error) {
		// Reset in case the store retries the mutation.
		*result = orderdto.CompletionResult{Trigger: trigger}
		sendErr = nil

		if current.Status == domain.StatusCompleted {
			result.AlreadyCompleted = true
			return nil, nil
		}
		if trigger == domain.TriggerAuto {
			if current.Status == domain.StatusCancelled {
				result.SkipReason = skipCancelled
				return nil, nil
			}
			if uc.cfg.RequirePaymentConfirmation && !current.IsPaid() {
				result.SkipReason = skipAwaitingPayment
				return nil, nil
			}
		}

		now := uc.now()
		info := domain.FulfillmentInfo{
			FulfillmentID: uc.newFulfillmentID(),
			DeliveryNode:  uc.pickDeliveryNode(),
			ExecutionTime: now,
		}
		attempt := domain.AuditEntry{
			At:          now,
			Actor:       string(trigger),
			Description: fmt.Sprintf("Delivery executed (%s) - Fulfillment ID: %s, Node: %s", trigger, info.FulfillmentID, info.DeliveryNode),
		}

		if sendErr = uc.sendDeliveryEmail(ctx, current, info); sendErr != nil {
			return &domain.OrderPatch{AppendAudit: []domain.AuditEntry{
				attempt,
				{
					At:          uc.now(),
					Actor:       actorSystem,
					Description: fmt.Sprintf("Delivery email failed, order remains %s", current.Status),
				},
			}}, nil
		}

		completed := domain.StatusCompleted
		result.Completed = true
		result.FulfillmentID = info.FulfillmentID
		return &domain.OrderPatch{
			Status:      &completed,
			Fulfillment: &info,
			AppendAudit: []domain.AuditEntry{attempt},
		}, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			uc.recordCompletionSkipped(trigger, "not_found")
			return nil, fmt.Errorf("complete order %s: %w", orderID, err)
		}
		uc.recordError("complete_order", "store")
		return nil, fmt.Errorf("complete order %s: %w", orderID, err)
	}
	result.Order = updated

	switch {
	case sendErr != nil:
		uc.recordError("complete_order", "delivery_email")
		uc.Logger.Error("delivery email failed, order not completed",
			"order_id", orderID,
			"trigger", trigger,
			"status", updated.Status,
			"error", sendErr)
		if trigger == domain.TriggerAuto && uc.Scheduler != nil && updated.Status.IsOpen() {
			delay := uc.fulfillmentDelay()
			uc.Scheduler.Schedule(orderID, delay)
			uc.Logger.Info("automatic completion re-armed", "order_id", orderID, "delay", delay.String())
		}
		return result, fmt.Errorf("%w: order %s: %w", domain.ErrNotificationFailed, orderID, sendErr)

	case result.AlreadyCompleted:
		uc.recordCompletionSkipped(trigger, "already_completed")
		uc.Logger.Info("order already completed", "order_id", orderID, "trigger", trigger)
		return result, nil

	case result.SkipReason != "":
		uc.recordCompletionSkipped(trigger, result.SkipReason)
		uc.Logger.Info("automatic completion skipped", "order_id", orderID, "reason", result.SkipReason)
		return result, nil
	}

	if uc.Scheduler != nil {
		uc.Scheduler.Cancel(orderID)
	}

	uc.Logger.Info("order completed",
		"order_id", orderID,
		"trigger", trigger,
		"fulfillment_id", result.FulfillmentID)

	uc.recordOrderCompletedMetrics(updated, trigger)
	uc.notifyOperators(ctx, orderCompletedMessage(updated, trigger))

	event := orderEvent(updated, domain.EventOrderCompleted)
	event.Trigger = trigger
	uc.publishEvent(event)

	return result, nil
}

func (uc *DefaultOrderUsecase) sendDeliveryEmail(ctx context.Context, order *domain.Order, info domain.FulfillmentInfo) error {
	if order.CustomerEmail == "" {
		uc.Logger.Warn("order has no customer email, skipping delivery email", "order_id", order.ID)
		return nil
	}

	email, err := deliveryEmail(order, info)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.cfg.EmailTimeout)
	defer cancel()
	return uc.Mailer.Send(ctx, email)
}
