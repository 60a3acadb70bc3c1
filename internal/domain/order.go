package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusWaiting    OrderStatus = "waiting"
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusFulfilling OrderStatus = "fulfilling"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

var knownStatuses = map[OrderStatus]struct{}{
	StatusWaiting:    {},
	StatusPending:    {},
	StatusProcessing: {},
	StatusFulfilling: {},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// IsValid reports whether s is one of the lifecycle statuses.
func (s OrderStatus) IsValid() bool {
	_, ok := knownStatuses[s]
	return ok
}

// IsOpen reports whether the order can still be completed.
func (s OrderStatus) IsOpen() bool {
	switch s {
	case StatusWaiting, StatusPending, StatusProcessing, StatusFulfilling:
		return true
	}
	return false
}

// Trigger names the producer that asked for completion.
type Trigger string

const (
	TriggerAuto   Trigger = "Auto"
	TriggerManual Trigger = "Manual"
)

type Money struct {
	Value    decimal.Decimal
	Currency string
}

type AuditEntry struct {
	ID          string
	At          time.Time
	Actor       string
	Description string
}

type FulfillmentInfo struct {
	FulfillmentID string
	DeliveryNode  string
	ExecutionTime time.Time
}

type Order struct {
	ID               string
	PaymentReference string
	InvoiceURL       string
	Amount           Money
	AmountUSD        decimal.Decimal
	CustomerName     string
	CustomerEmail    string
	ProductName      string
	Status           OrderStatus
	AuditLog         []AuditEntry

	TxID               string
	DeliveryProofImage string

	// Set only by the completion routine.
	Fulfillment *FulfillmentInfo

	PaymentStatus string
	PaidAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPaid reports whether the payment processor confirmed the invoice.
func (o *Order) IsPaid() bool {
	return IsPaidStatus(o.PaymentStatus)
}

// IsPaidStatus reports whether a processor payment status settles the invoice.
func IsPaidStatus(status string) bool {
	switch status {
	case PaymentStatusFinished, PaymentStatusConfirmed:
		return true
	}
	return false
}

const (
	PaymentStatusWaiting   = "waiting"
	PaymentStatusConfirmed = "confirmed"
	PaymentStatusFinished  = "finished"
	PaymentStatusFailed    = "failed"
	PaymentStatusExpired   = "expired"
	PaymentStatusPartially = "partially_paid"
)

// OrderPatch is a partial update. Nil fields are left untouched, AppendAudit
// entries are appended after the existing log in slice order.
type OrderPatch struct {
	Status             *OrderStatus
	TxID               *string
	DeliveryProofImage *string
	Fulfillment        *FulfillmentInfo
	PaymentStatus      *string
	PaidAt             *time.Time
	AppendAudit        []AuditEntry
}

func (p *OrderPatch) IsEmpty() bool {
	return p == nil || (p.Status == nil &&
		p.TxID == nil &&
		p.DeliveryProofImage == nil &&
		p.Fulfillment == nil &&
		p.PaymentStatus == nil &&
		p.PaidAt == nil &&
		len(p.AppendAudit) == 0)
}

// Apply mutates o in place. Repositories use it to keep the in-memory view
// consistent with what they persist.
func (p *OrderPatch) Apply(o *Order) {
	if p == nil {
		return
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.TxID != nil {
		o.TxID = *p.TxID
	}
	if p.DeliveryProofImage != nil {
		o.DeliveryProofImage = *p.DeliveryProofImage
	}
	if p.Fulfillment != nil {
		f := *p.Fulfillment
		o.Fulfillment = &f
	}
	if p.PaymentStatus != nil {
		o.PaymentStatus = *p.PaymentStatus
	}
	if p.PaidAt != nil {
		t := *p.PaidAt
		o.PaidAt = &t
	}
	o.AuditLog = append(o.AuditLog, p.AppendAudit...)
}

// Clone returns a deep copy safe to hand out of a repository.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.AuditLog = append([]AuditEntry(nil), o.AuditLog...)
	if o.Fulfillment != nil {
		f := *o.Fulfillment
		c.Fulfillment = &f
	}
	if o.PaidAt != nil {
		t := *o.PaidAt
		c.PaidAt = &t
	}
	return &c
}
