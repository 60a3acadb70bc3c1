package memory

import (
	"context"
	"testing"
	"time"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	"github.com/stretchr/testify/require"
	"go.openly.dev/pointy"
)

func TestUncreatedOrderLogs(t *testing.T) {
	ctx := context.Background()
	repo := NewUncreatedOrderRepository()
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateLog(ctx, &domain.UncreatedOrder{OrderID: "WOLF_1", CustomerEmail: "a@example.com", CreatedAt: base}))
	require.NoError(t, repo.CreateLog(ctx, &domain.UncreatedOrder{OrderID: "WOLF_2", CustomerEmail: "b@example.com", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, repo.CreateLog(ctx, &domain.UncreatedOrder{OrderID: "WOLF_3", CustomerEmail: "a@example.com", CreatedAt: base.Add(2 * time.Hour)}))

	all, err := repo.GetLogs(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "WOLF_3", all[0].OrderID)
	require.NotEmpty(t, all[0].ID)

	byEmail, err := repo.GetLogs(ctx, &domain.UncreatedOrdersFilter{CustomerEmail: pointy.String("a@example.com")})
	require.NoError(t, err)
	require.Len(t, byEmail, 2)

	from := base.Add(30 * time.Minute)
	windowed, err := repo.GetLogs(ctx, &domain.UncreatedOrdersFilter{From: &from, Limit: 1})
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	require.Equal(t, "WOLF_3", windowed[0].OrderID)
}
