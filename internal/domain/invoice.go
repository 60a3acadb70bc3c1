package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type InvoiceRequest struct {
	AmountUSD     decimal.Decimal
	OrderID       string
	Description   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

type Invoice struct {
	ID  string
	URL string
}

// InvoiceIssuer creates a hosted invoice at the payment processor.
type InvoiceIssuer interface {
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error)
}

// PaymentUpdate is a verified payment status notification from the processor.
type PaymentUpdate struct {
	OrderID       string
	PaymentID     string
	PaymentStatus string
	ActuallyPaid  string
	PayCurrency   string
}

// PaymentVerifier authenticates and decodes processor callbacks.
type PaymentVerifier interface {
	ParseIPN(body []byte, signature string) (*PaymentUpdate, error)
}
