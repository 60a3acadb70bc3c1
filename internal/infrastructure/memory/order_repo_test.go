package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.openly.dev/pointy"
)

func newOrder(id string, createdAt time.Time) *domain.Order {
	return &domain.Order{
		ID:               id,
		PaymentReference: "inv-" + id,
		Amount:           domain.Money{Value: decimal.NewFromInt(120), Currency: "ILS"},
		AmountUSD:        decimal.RequireFromString("32.43"),
		CustomerName:     "Dana",
		CustomerEmail:    "dana@example.com",
		ProductName:      "WOLF GAMING Credits",
		Status:           domain.StatusFulfilling,
		AuditLog:         []domain.AuditEntry{{At: createdAt, Actor: "system", Description: "Order Initialized"}},
		CreatedAt:        createdAt,
	}
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	order := newOrder("WOLF_1", time.Now())
	require.NoError(t, repo.CreateOrder(ctx, order))
	require.NotEmpty(t, order.AuditLog[0].ID)

	got, err := repo.GetOrderByID(ctx, "WOLF_1")
	require.NoError(t, err)
	require.Equal(t, order.ID, got.ID)
	require.Equal(t, order.PaymentReference, got.PaymentReference)
	require.True(t, order.Amount.Value.Equal(got.Amount.Value))
	require.Equal(t, order.CustomerEmail, got.CustomerEmail)
	require.Len(t, got.AuditLog, 1)

	got.AuditLog = append(got.AuditLog, domain.AuditEntry{Description: "mutated copy"})
	again, err := repo.GetOrderByID(ctx, "WOLF_1")
	require.NoError(t, err)
	require.Len(t, again.AuditLog, 1)
}

func TestCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	require.NoError(t, repo.CreateOrder(ctx, newOrder("WOLF_1", time.Now())))
	err := repo.CreateOrder(ctx, newOrder("WOLF_1", time.Now()))
	require.ErrorIs(t, err, domain.ErrDuplicateOrder)
}

func TestGetMissing(t *testing.T) {
	_, err := NewOrderRepository().GetOrderByID(context.Background(), "WOLF_404")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestUpdateMissing(t *testing.T) {
	_, err := NewOrderRepository().UpdateOrder(context.Background(), "WOLF_404", &domain.OrderPatch{TxID: pointy.String("tx")})
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestUpdateOrderAppliesPartialFields(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	require.NoError(t, repo.CreateOrder(ctx, newOrder("WOLF_1", time.Now())))

	updated, err := repo.UpdateOrder(ctx, "WOLF_1", &domain.OrderPatch{TxID: pointy.String("abc")})
	require.NoError(t, err)
	require.Equal(t, "abc", updated.TxID)
	require.Equal(t, domain.StatusFulfilling, updated.Status)

	updated, err = repo.UpdateOrder(ctx, "WOLF_1", &domain.OrderPatch{DeliveryProofImage: pointy.String("data:image/png;base64,AA==")})
	require.NoError(t, err)
	require.Equal(t, "abc", updated.TxID)
	require.Equal(t, "data:image/png;base64,AA==", updated.DeliveryProofImage)
}

func TestUpdateOrderFuncErrorLeavesOrderUntouched(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	require.NoError(t, repo.CreateOrder(ctx, newOrder("WOLF_1", time.Now())))

	boom := errors.New("boom")
	_, err := repo.UpdateOrderFunc(ctx, "WOLF_1", func(*domain.Order) (*domain.OrderPatch, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	got, err := repo.GetOrderByID(ctx, "WOLF_1")
	require.NoError(t, err)
	require.Len(t, got.AuditLog, 1)
}

func TestConcurrentAuditAppendsAreNotLost(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	require.NoError(t, repo.CreateOrder(ctx, newOrder("WOLF_1", time.Now())))

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.UpdateOrderFunc(ctx, "WOLF_1", func(current *domain.Order) (*domain.OrderPatch, error) {
				return &domain.OrderPatch{AppendAudit: []domain.AuditEntry{{
					At:          time.Now(),
					Actor:       "admin",
					Description: fmt.Sprintf("entry %d after %d", i, len(current.AuditLog)),
				}}}, nil
			})
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := repo.GetOrderByID(ctx, "WOLF_1")
	require.NoError(t, err)
	require.Len(t, got.AuditLog, writers+1)
	require.Equal(t, "Order Initialized", got.AuditLog[0].Description)
	for i := 1; i < len(got.AuditLog); i++ {
		require.Contains(t, got.AuditLog[i].Description, fmt.Sprintf("after %d", i))
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateOrder(ctx, newOrder("WOLF_1", base)))
	require.NoError(t, repo.CreateOrder(ctx, newOrder("WOLF_3", base.Add(2*time.Minute))))
	require.NoError(t, repo.CreateOrder(ctx, newOrder("WOLF_2", base.Add(time.Minute))))

	orders, err := repo.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	require.Equal(t, "WOLF_3", orders[0].ID)
	require.Equal(t, "WOLF_2", orders[1].ID)
	require.Equal(t, "WOLF_1", orders[2].ID)
}

func TestListOpenOrders(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	require.NoError(t, repo.CreateOrder(ctx, newOrder("WOLF_1", time.Now())))
	done := newOrder("WOLF_2", time.Now())
	done.Status = domain.StatusCompleted
	require.NoError(t, repo.CreateOrder(ctx, done))
	cancelled := newOrder("WOLF_3", time.Now())
	cancelled.Status = domain.StatusCancelled
	require.NoError(t, repo.CreateOrder(ctx, cancelled))

	open, err := repo.ListOpenOrders(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, "WOLF_1", open[0].ID)
}
