package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	"github.com/google/uuid"
)

const defaultUncreatedOrdersLimit = 100

type UncreatedOrderRepository struct {
	mu   sync.RWMutex
	logs []*domain.UncreatedOrder
}

func NewUncreatedOrderRepository() *UncreatedOrderRepository {
	return &UncreatedOrderRepository{}
}

func (r *UncreatedOrderRepository) CreateLog(_ context.Context, log *domain.UncreatedOrder) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	copied := *log

	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, &copied)
	return nil
}

func (r *UncreatedOrderRepository) GetLogs(_ context.Context, filter *domain.UncreatedOrdersFilter) ([]*domain.UncreatedOrder, error) {
	limit := defaultUncreatedOrdersLimit
	if filter != nil && filter.Limit > 0 {
		limit = filter.Limit
	}

	r.mu.RLock()
	matched := make([]*domain.UncreatedOrder, 0, len(r.logs))
	for i := len(r.logs) - 1; i >= 0; i-- {
		if matches(r.logs[i], filter) {
			copied := *r.logs[i]
			matched = append(matched, &copied)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func matches(log *domain.UncreatedOrder, filter *domain.UncreatedOrdersFilter) bool {
	if filter == nil {
		return true
	}
	if filter.CustomerEmail != nil && log.CustomerEmail != *filter.CustomerEmail {
		return false
	}
	if filter.From != nil && log.CreatedAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && log.CreatedAt.After(*filter.To) {
		return false
	}
	return true
}
