package response

import "time"

type LoginResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type AuditEntryResponse struct {
	At          time.Time `json:"at"`
	Actor       string    `json:"actor"`
	Description string    `json:"description"`
}

type FulfillmentResponse struct {
	FulfillmentID string    `json:"fulfillmentId"`
	DeliveryNode  string    `json:"deliveryNode"`
	ExecutionTime time.Time `json:"executionTime"`
}

type OrderResponse struct {
	ID               string               `json:"orderId"`
	PaymentReference string               `json:"paymentId"`
	InvoiceURL       string               `json:"invoiceUrl"`
	Amount           string               `json:"amount"`
	Currency         string               `json:"currency"`
	AmountUSD        string               `json:"amountUsd"`
	CustomerName     string               `json:"customerName"`
	CustomerEmail    string               `json:"customerEmail"`
	ProductName      string               `json:"productName"`
	Status           string               `json:"status"`
	PaymentStatus    string               `json:"paymentStatus,omitempty"`
	PaidAt           *time.Time           `json:"paidAt,omitempty"`
	TxID             string               `json:"txid,omitempty"`
	HasProofImage    bool                 `json:"hasProofImage"`
	Fulfillment      *FulfillmentResponse `json:"fulfillment,omitempty"`
	AuditLog         []AuditEntryResponse `json:"auditLog"`
	CreatedAt        time.Time            `json:"createdAt"`
}

type MarkDeliveredResponse struct {
	Success          bool           `json:"success"`
	AlreadyCompleted bool           `json:"alreadyCompleted"`
	FulfillmentID    string         `json:"fulfillmentId,omitempty"`
	Order            *OrderResponse `json:"order"`
}

type UncreatedOrderResponse struct {
	ID            string    `json:"id"`
	OrderID       string    `json:"orderId"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	AmountUSD     string    `json:"amountUsd"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	ProductName   string    `json:"productName"`
	ErrorMessage  string    `json:"errorMessage"`
	CreatedAt     time.Time `json:"createdAt"`
}
