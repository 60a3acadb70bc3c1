package orderdto

import "github.com/shopspring/decimal"

// CheckoutSource names the storefront entry point that created the order.
type CheckoutSource string

const (
	// SourceCheckout is the full checkout form (process-payment).
	SourceCheckout CheckoutSource = "checkout"
	// SourcePayLink is the one-click /pay/{amount} link.
	SourcePayLink CheckoutSource = "pay_link"
)

type CreateOrderInput struct {
	Amount        decimal.Decimal
	Currency      string
	CustomerName  string
	CustomerEmail string
	ProductName   string
	Source        CheckoutSource
}

type UpdateDeliveryInput struct {
	OrderID            string
	TxID               *string
	DeliveryProofImage *string
}
