package usecase

import (
	"context"
	"time"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
)

const maxUncreatedOrdersLimit = 500

type UncreatedOrderUsecase interface {
	LogEvent(ctx context.Context, event *domain.UncreatedOrder) error
	GetUncreatedLogs(ctx context.Context, filter *domain.UncreatedOrdersFilter) ([]*domain.UncreatedOrder, error)
}

type DefaultUncreatedOrderUsecase struct {
	uncreatedOrdersRepo domain.UncreatedOrderRepository
}

func NewDefaultUncreatedOrderUsecase(uncreatedOrdersRepo domain.UncreatedOrderRepository) *DefaultUncreatedOrderUsecase {
	return &DefaultUncreatedOrderUsecase{
		uncreatedOrdersRepo: uncreatedOrdersRepo,
	}
}

func (uc *DefaultUncreatedOrderUsecase) LogEvent(ctx context.Context, event *domain.UncreatedOrder) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return uc.uncreatedOrdersRepo.CreateLog(ctx, event)
}

func (uc *DefaultUncreatedOrderUsecase) GetUncreatedLogs(ctx context.Context, filter *domain.UncreatedOrdersFilter) ([]*domain.UncreatedOrder, error) {
	if filter == nil {
		filter = &domain.UncreatedOrdersFilter{}
	}
	if filter.Limit > maxUncreatedOrdersLimit {
		filter.Limit = maxUncreatedOrdersLimit
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.NewValidationError("to", "must not be before from")
	}
	return uc.uncreatedOrdersRepo.GetLogs(ctx, filter)
}
