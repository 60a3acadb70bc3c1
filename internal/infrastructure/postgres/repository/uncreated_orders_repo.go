package repository

import (
	"context"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	"github.com/LavaJover/wolf-checkout-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/wolf-checkout-service/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultUncreatedOrdersLimit = 100

type DefaultUncreatedOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultUncreatedOrderRepository(db *gorm.DB) *DefaultUncreatedOrderRepository {
	return &DefaultUncreatedOrderRepository{
		DB: db,
	}
}

func (r *DefaultUncreatedOrderRepository) CreateLog(ctx context.Context, log *domain.UncreatedOrder) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	model := mappers.ToGORMUncreatedOrder(log)
	return r.DB.WithContext(ctx).Create(model).Error
}

func (r *DefaultUncreatedOrderRepository) GetLogs(ctx context.Context, filter *domain.UncreatedOrdersFilter) ([]*domain.UncreatedOrder, error) {
	var uncreatedOrderModels []*models.UncreatedOrderModel

	query := r.DB.WithContext(ctx).Model(&models.UncreatedOrderModel{})
	query = applyFilters(query, filter)

	limit := defaultUncreatedOrdersLimit
	if filter != nil && filter.Limit > 0 {
		limit = filter.Limit
	}

	if err := query.Order("created_at DESC").Limit(limit).Find(&uncreatedOrderModels).Error; err != nil {
		return nil, err
	}

	uncreatedOrders := make([]*domain.UncreatedOrder, len(uncreatedOrderModels))
	for i, uncreatedOrderModel := range uncreatedOrderModels {
		uncreatedOrders[i] = mappers.ToDomainUncreatedOrder(uncreatedOrderModel)
	}

	return uncreatedOrders, nil
}

func applyFilters(query *gorm.DB, filter *domain.UncreatedOrdersFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.CustomerEmail != nil {
		query = query.Where("customer_email = ?", *filter.CustomerEmail)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	return query
}
