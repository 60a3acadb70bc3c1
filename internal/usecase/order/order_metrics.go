package usecase

import (
	"time"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
)

// recordOrderCreatedMetrics is called once the order is persisted.
func (uc *DefaultOrderUsecase) recordOrderCreatedMetrics(order *domain.Order) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordOrderCreated(order.Amount.Currency, string(order.Status), order.Amount.Value.InexactFloat64())
}

// recordOrderCompletedMetrics is called after a successful completion.
func (uc *DefaultOrderUsecase) recordOrderCompletedMetrics(order *domain.Order, trigger domain.Trigger) {
	if uc.Metrics == nil {
		return
	}
	var sinceCreation float64
	if !order.CreatedAt.IsZero() {
		sinceCreation = uc.now().Sub(order.CreatedAt).Seconds()
	}
	uc.Metrics.RecordOrderCompleted(string(trigger), order.Amount.Currency, order.Amount.Value.InexactFloat64(), sinceCreation)
}

func (uc *DefaultOrderUsecase) recordCompletionSkipped(trigger domain.Trigger, reason string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordCompletionSkipped(string(trigger), reason)
}

func (uc *DefaultOrderUsecase) recordOrderRejected(reason string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordOrderRejected(reason)
}

func (uc *DefaultOrderUsecase) recordStatusChange(status domain.OrderStatus) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordStatusChange(string(status))
}

func (uc *DefaultOrderUsecase) recordInvoiceRequest(elapsed time.Duration, err error) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordInvoiceRequest(elapsed.Seconds(), err)
}

func (uc *DefaultOrderUsecase) recordNotificationFailure(channel string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordNotificationFailure(channel)
}

func (uc *DefaultOrderUsecase) recordError(operation, errorType string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordError(operation, errorType)
}
