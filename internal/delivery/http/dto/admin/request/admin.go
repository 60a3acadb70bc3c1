package request

type LoginRequest struct {
	Password string `json:"password"`
}

type UpdateStatusRequest struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type MarkDeliveredRequest struct {
	OrderID string `json:"orderId"`
}
