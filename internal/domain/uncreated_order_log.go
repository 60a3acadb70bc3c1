package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// UncreatedOrder is a checkout attempt that never became an order, kept for operators.
type UncreatedOrder struct {
	ID            string
	OrderID       string
	Amount        Money
	AmountUSD     decimal.Decimal
	CustomerName  string
	CustomerEmail string
	ProductName   string
	ErrorMessage  string
	CreatedAt     time.Time
}

type UncreatedOrdersFilter struct {
	CustomerEmail *string
	From          *time.Time
	To            *time.Time
	Limit         int
}

type UncreatedOrderRepository interface {
	CreateLog(ctx context.Context, log *UncreatedOrder) error
	GetLogs(ctx context.Context, filter *UncreatedOrdersFilter) ([]*UncreatedOrder, error)
}
