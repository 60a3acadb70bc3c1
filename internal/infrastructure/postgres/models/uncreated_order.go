package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type UncreatedOrderModel struct {
	ID            string          `gorm:"primaryKey;type:uuid"`
	OrderID       string          `gorm:"type:varchar(64)"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2)"`
	Currency      string          `gorm:"type:varchar(8)"`
	AmountUSD     decimal.Decimal `gorm:"type:numeric(14,2)"`
	CustomerName  string
	CustomerEmail string `gorm:"index:idx_uncreated_customer_email"`
	ProductName   string
	ErrorMessage  string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"index:idx_uncreated_created_at"`
}

func (UncreatedOrderModel) TableName() string {
	return "uncreated_orders"
}
