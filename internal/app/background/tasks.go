package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/wolf-checkout-service/internal/usecase"
	orderusecase "github.com/LavaJover/wolf-checkout-service/internal/usecase/order"
)

type BackgroundTasks struct {
	OrderUsecase        orderusecase.OrderUsecase
	ExchangeRateService usecase.ExchangeRateService
	RateRefreshInterval time.Duration
	Logger              *slog.Logger
}

func NewBackgroundTasks(orderUC orderusecase.OrderUsecase, rates usecase.ExchangeRateService, rateRefreshInterval time.Duration, logger *slog.Logger) *BackgroundTasks {
	return &BackgroundTasks{
		OrderUsecase:        orderUC,
		ExchangeRateService: rates,
		RateRefreshInterval: rateRefreshInterval,
		Logger:              logger.With("component", "background"),
	}
}

// StartAll refreshes the rate and restores fulfillment timers synchronously,
// then leaves the periodic refresh running until ctx is cancelled.
func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	bt.refreshRate(ctx)
	bt.restoreTimers(ctx)
	go bt.startRateRefresh(ctx)
}

func (bt *BackgroundTasks) restoreTimers(ctx context.Context) {
	if _, err := bt.OrderUsecase.RearmOpenOrders(ctx); err != nil {
		bt.Logger.Error("failed to restore fulfillment timers", "error", err)
	}
}

func (bt *BackgroundTasks) startRateRefresh(ctx context.Context) {
	interval := bt.RateRefreshInterval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bt.refreshRate(ctx)
		}
	}
}

func (bt *BackgroundTasks) refreshRate(ctx context.Context) {
	if err := bt.ExchangeRateService.Refresh(ctx); err != nil {
		bt.Logger.Error("exchange rate update failed", "error", err)
		return
	}
	snapshot := bt.ExchangeRateService.Snapshot()
	bt.Logger.Info("exchange rate updated",
		"pair", snapshot.Pair.String(),
		"rate", snapshot.Rate.String(),
		"provider", snapshot.Provider)
}
