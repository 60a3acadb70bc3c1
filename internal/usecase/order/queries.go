package usecase

import (
	"context"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
)

func (uc *DefaultOrderUsecase) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	return uc.OrderRepo.GetOrderByID(ctx, orderID)
}

func (uc *DefaultOrderUsecase) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return uc.OrderRepo.ListOrders(ctx)
}

// RearmOpenOrders gives every open order a fresh fulfillment timer. It runs
// once at boot, since timers do not survive a restart.
func (uc *DefaultOrderUsecase) RearmOpenOrders(ctx context.Context) (int, error) {
	open, err := uc.OrderRepo.ListOpenOrders(ctx)
	if err != nil {
		return 0, err
	}

	armed := 0
	for _, order := range open {
		if uc.cfg.RequirePaymentConfirmation && !order.IsPaid() {
			continue
		}
		uc.Scheduler.Schedule(order.ID, uc.fulfillmentDelay())
		armed++
	}

	if uc.Metrics != nil {
		uc.Metrics.RecordOpenOrdersRestored(len(open))
	}
	uc.Logger.Info("fulfillment timers restored", "open_orders", len(open), "armed", armed)
	return armed, nil
}
