package usecase

import (
	"context"
	"fmt"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
)

const actorProcessor = "nowpayments"

// ApplyPaymentUpdate records a verified processor callback. With payment
// confirmation required, the first paid callback of an open order arms its
// fulfillment timer.
func (uc *DefaultOrderUsecase) ApplyPaymentUpdate(ctx context.Context, update *domain.PaymentUpdate) (*domain.Order, error) {
	var becamePaid bool

	updated, err := uc.OrderRepo.UpdateOrderFunc(ctx, update.OrderID, func(current *domain.Order) (*domain.OrderPatch, error) {
		becamePaid = false
		if current.PaymentStatus == update.PaymentStatus {
			return nil, nil
		}

		patch := &domain.OrderPatch{
			PaymentStatus: &update.PaymentStatus,
			AppendAudit: []domain.AuditEntry{{
				At:          uc.now(),
				Actor:       actorProcessor,
				Description: fmt.Sprintf("Payment status: %s", update.PaymentStatus),
			}},
		}

		if domain.IsPaidStatus(update.PaymentStatus) && current.PaidAt == nil {
			paidAt := uc.now()
			patch.PaidAt = &paidAt
			becamePaid = true
		}
		return patch, nil
	})
	if err != nil {
		return nil, err
	}

	uc.Logger.Info("payment update applied",
		"order_id", update.OrderID,
		"payment_id", update.PaymentID,
		"payment_status", update.PaymentStatus)

	uc.publishEvent(domain.OrderEvent{
		OrderID:     updated.ID,
		Event:       domain.EventPaymentUpdated,
		Status:      updated.Status,
		Amount:      updated.Amount,
		ProductName: updated.ProductName,
		Description: update.PaymentStatus,
	})

	if becamePaid {
		uc.notifyOperators(ctx, paymentReceivedMessage(updated, update))
		if uc.cfg.RequirePaymentConfirmation && updated.Status.IsOpen() {
			uc.Scheduler.Schedule(updated.ID, uc.fulfillmentDelay())
		}
	}

	return updated, nil
}
