package request

import "github.com/shopspring/decimal"

// ProcessPaymentRequest is the checkout form. TotalAmount, when present,
// takes precedence over BaseAmount.
type ProcessPaymentRequest struct {
	BaseAmount  decimal.NullDecimal `json:"baseAmount"`
	TotalAmount decimal.NullDecimal `json:"totalAmount"`
	Currency    string              `json:"currency"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	ProductName string              `json:"productName"`
}

func (r *ProcessPaymentRequest) Amount() (decimal.Decimal, bool) {
	if r.TotalAmount.Valid && r.TotalAmount.Decimal.IsPositive() {
		return r.TotalAmount.Decimal, true
	}
	if r.BaseAmount.Valid {
		return r.BaseAmount.Decimal, true
	}
	return decimal.Zero, false
}
