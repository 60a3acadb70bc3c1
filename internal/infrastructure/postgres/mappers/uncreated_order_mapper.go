package mappers

import (
	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	"github.com/LavaJover/wolf-checkout-service/internal/infrastructure/postgres/models"
)

func ToDomainUncreatedOrder(model *models.UncreatedOrderModel) *domain.UncreatedOrder {
	return &domain.UncreatedOrder{
		ID:      model.ID,
		OrderID: model.OrderID,
		Amount: domain.Money{
			Value:    model.Amount,
			Currency: model.Currency,
		},
		AmountUSD:     model.AmountUSD,
		CustomerName:  model.CustomerName,
		CustomerEmail: model.CustomerEmail,
		ProductName:   model.ProductName,
		ErrorMessage:  model.ErrorMessage,
		CreatedAt:     model.CreatedAt,
	}
}

func ToGORMUncreatedOrder(uncreatedLog *domain.UncreatedOrder) *models.UncreatedOrderModel {
	return &models.UncreatedOrderModel{
		ID:            uncreatedLog.ID,
		OrderID:       uncreatedLog.OrderID,
		Amount:        uncreatedLog.Amount.Value,
		Currency:      uncreatedLog.Amount.Currency,
		AmountUSD:     uncreatedLog.AmountUSD,
		CustomerName:  uncreatedLog.CustomerName,
		CustomerEmail: uncreatedLog.CustomerEmail,
		ProductName:   uncreatedLog.ProductName,
		ErrorMessage:  uncreatedLog.ErrorMessage,
		CreatedAt:     uncreatedLog.CreatedAt,
	}
}
