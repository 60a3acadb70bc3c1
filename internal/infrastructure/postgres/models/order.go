package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderModel struct {
	ID               string          `gorm:"primaryKey;type:varchar(64)"`
	PaymentReference string          `gorm:"type:varchar(128);not null"`
	InvoiceURL       string          `gorm:"type:text"`
	Amount           decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Currency         string          `gorm:"type:varchar(8);not null"`
	AmountUSD        decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CustomerName     string          `gorm:"not null"`
	CustomerEmail    string          `gorm:"not null;index:idx_orders_customer_email"`
	ProductName      string          `gorm:"not null"`
	Status           string          `gorm:"type:varchar(32);not null;index:idx_orders_status"`

	// Columns added after the first release stay nullable.
	TxID               *string
	DeliveryProofImage *string `gorm:"type:text"`
	FulfillmentID      *string `gorm:"type:varchar(64)"`
	DeliveryNode       *string `gorm:"type:varchar(64)"`
	ExecutionTime      *time.Time
	PaymentStatus      *string `gorm:"type:varchar(32)"`
	PaidAt             *time.Time

	AuditEntries []AuditEntryModel `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`

	CreatedAt time.Time `gorm:"index:idx_orders_created_at"`
	UpdatedAt time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}

// AuditEntryModel is one row of an order's append-only audit trail.
// Seq orders entries within an order.
type AuditEntryModel struct {
	ID          string    `gorm:"primaryKey;type:uuid"`
	OrderID     string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_audit_order_seq,priority:1"`
	Seq         int       `gorm:"not null;uniqueIndex:idx_audit_order_seq,priority:2"`
	At          time.Time `gorm:"not null"`
	Actor       string    `gorm:"type:varchar(32);not null"`
	Description string    `gorm:"type:text;not null"`
}

func (AuditEntryModel) TableName() string {
	return "order_audit_entries"
}
