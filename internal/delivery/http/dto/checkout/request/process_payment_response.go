package request

type ProcessPaymentResponse struct {
	OrderID    string `json:"orderId"`
	InvoiceURL string `json:"invoiceUrl"`
}
