package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	"github.com/google/uuid"
)

type storedOrder struct {
	order *domain.Order
	seq   uint64
}

// OrderRepository keeps orders in process memory. Updates of one order are
// serialized by a per-order mutex; different orders never contend on it.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*storedOrder
	locks  map[string]*sync.Mutex
	seq    uint64
	now    func() time.Time
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]*storedOrder),
		locks:  make(map[string]*sync.Mutex),
		now:    time.Now,
	}
}

func (r *OrderRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateOrder, order.ID)
	}

	now := r.now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	for i := range order.AuditLog {
		if order.AuditLog[i].ID == "" {
			order.AuditLog[i].ID = uuid.New().String()
		}
	}

	r.seq++
	r.orders[order.ID] = &storedOrder{order: order.Clone(), seq: r.seq}
	r.locks[order.ID] = &sync.Mutex{}
	return nil
}

func (r *OrderRepository) GetOrderByID(_ context.Context, orderID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return stored.order.Clone(), nil
}

func (r *OrderRepository) UpdateOrder(ctx context.Context, orderID string, patch *domain.OrderPatch) (*domain.Order, error) {
	return r.UpdateOrderFunc(ctx, orderID, func(*domain.Order) (*domain.OrderPatch, error) {
		return patch, nil
	})
}

func (r *OrderRepository) UpdateOrderFunc(ctx context.Context, orderID string, mutate domain.OrderMutation) (*domain.Order, error) {
	r.mu.RLock()
	lock, ok := r.locks[orderID]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrOrderNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	current, err := r.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	patch, err := mutate(current.Clone())
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return current, nil
	}

	for i := range patch.AppendAudit {
		if patch.AppendAudit[i].ID == "" {
			patch.AppendAudit[i].ID = uuid.New().String()
		}
	}

	r.mu.Lock()
	stored := r.orders[orderID]
	patch.Apply(stored.order)
	stored.order.UpdatedAt = r.now()
	updated := stored.order.Clone()
	r.mu.Unlock()

	return updated, nil
}

func (r *OrderRepository) ListOrders(_ context.Context) ([]*domain.Order, error) {
	return r.list(func(*domain.Order) bool { return true }), nil
}

func (r *OrderRepository) ListOpenOrders(_ context.Context) ([]*domain.Order, error) {
	return r.list(func(o *domain.Order) bool { return o.Status.IsOpen() }), nil
}

func (r *OrderRepository) list(keep func(*domain.Order) bool) []*domain.Order {
	r.mu.RLock()
	stored := make([]*storedOrder, 0, len(r.orders))
	for _, s := range r.orders {
		if keep(s.order) {
			stored = append(stored, &storedOrder{order: s.order.Clone(), seq: s.seq})
		}
	}
	r.mu.RUnlock()

	sort.Slice(stored, func(i, j int) bool {
		a, b := stored[i], stored[j]
		if !a.order.CreatedAt.Equal(b.order.CreatedAt) {
			return a.order.CreatedAt.After(b.order.CreatedAt)
		}
		return a.seq > b.seq
	})

	orders := make([]*domain.Order, len(stored))
	for i, s := range stored {
		orders[i] = s.order
	}
	return orders
}
