package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	"github.com/LavaJover/wolf-checkout-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/wolf-checkout-service/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var openStatuses = []string{
	string(domain.StatusWaiting),
	string(domain.StatusPending),
	string(domain.StatusProcessing),
	string(domain.StatusFulfilling),
}

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

func (r *DefaultOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	orderModel := mappers.ToGORMOrder(order)
	for i := range order.AuditLog {
		if order.AuditLog[i].ID == "" {
			order.AuditLog[i].ID = uuid.New().String()
		}
		orderModel.AuditEntries = append(orderModel.AuditEntries, *mappers.ToGORMAuditEntry(order.ID, i, order.AuditLog[i]))
	}

	if err := r.DB.WithContext(ctx).Create(orderModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateOrder, order.ID)
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	order.CreatedAt = orderModel.CreatedAt
	order.UpdatedAt = orderModel.UpdatedAt
	return nil
}

func (r *DefaultOrderRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.WithContext(ctx).
		Preload("AuditEntries", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	return mappers.ToDomainOrder(&order), nil
}

func (r *DefaultOrderRepository) UpdateOrder(ctx context.Context, orderID string, patch *domain.OrderPatch) (*domain.Order, error) {
	return r.UpdateOrderFunc(ctx, orderID, func(*domain.Order) (*domain.OrderPatch, error) {
		return patch, nil
	})
}

// UpdateOrderFunc locks the order row with SELECT ... FOR UPDATE for the
// duration of the transaction, so concurrent callers queue on the same order.
func (r *DefaultOrderRepository) UpdateOrderFunc(ctx context.Context, orderID string, mutate domain.OrderMutation) (*domain.Order, error) {
	var result *domain.Order

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orderModel models.OrderModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&orderModel, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrderNotFound
			}
			return err
		}

		if err := tx.Where("order_id = ?", orderID).
			Order("seq ASC").
			Find(&orderModel.AuditEntries).Error; err != nil {
			return fmt.Errorf("failed to load audit log: %w", err)
		}

		current := mappers.ToDomainOrder(&orderModel)
		patch, err := mutate(current.Clone())
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			result = current
			return nil
		}

		if err := r.applyPatch(tx, orderID, len(orderModel.AuditEntries), patch); err != nil {
			return err
		}

		patch.Apply(current)
		result = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *DefaultOrderRepository) applyPatch(tx *gorm.DB, orderID string, nextSeq int, patch *domain.OrderPatch) error {
	updates := mappers.ToGORMOrderUpdates(patch)
	updates["updated_at"] = time.Now()
	if err := tx.Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	if len(patch.AppendAudit) == 0 {
		return nil
	}

	entries := make([]*models.AuditEntryModel, 0, len(patch.AppendAudit))
	for i := range patch.AppendAudit {
		if patch.AppendAudit[i].ID == "" {
			patch.AppendAudit[i].ID = uuid.New().String()
		}
		entries = append(entries, mappers.ToGORMAuditEntry(orderID, nextSeq+i, patch.AppendAudit[i]))
	}
	if err := tx.Create(&entries).Error; err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}

	return nil
}

func (r *DefaultOrderRepository) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return r.findOrders(r.DB.WithContext(ctx))
}

func (r *DefaultOrderRepository) ListOpenOrders(ctx context.Context) ([]*domain.Order, error) {
	return r.findOrders(r.DB.WithContext(ctx).Where("status IN ?", openStatuses))
}

func (r *DefaultOrderRepository) findOrders(query *gorm.DB) ([]*domain.Order, error) {
	var orderModels []models.OrderModel
	if err := query.
		Preload("AuditEntries", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Order("created_at DESC").
		Find(&orderModels).Error; err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}

	orders := make([]*domain.Order, len(orderModels))
	for i, orderModel := range orderModels {
		orders[i] = mappers.ToDomainOrder(&orderModel)
	}

	return orders, nil
}
