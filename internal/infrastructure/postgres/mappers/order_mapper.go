package mappers

import (
	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	"github.com/LavaJover/wolf-checkout-service/internal/infrastructure/postgres/models"
	"go.openly.dev/pointy"
)

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	order := &domain.Order{
		ID:               model.ID,
		PaymentReference: model.PaymentReference,
		InvoiceURL:       model.InvoiceURL,
		Amount: domain.Money{
			Value:    model.Amount,
			Currency: model.Currency,
		},
		AmountUSD:          model.AmountUSD,
		CustomerName:       model.CustomerName,
		CustomerEmail:      model.CustomerEmail,
		ProductName:        model.ProductName,
		Status:             domain.OrderStatus(model.Status),
		TxID:               pointy.StringValue(model.TxID, ""),
		DeliveryProofImage: pointy.StringValue(model.DeliveryProofImage, ""),
		PaymentStatus:      pointy.StringValue(model.PaymentStatus, ""),
		PaidAt:             model.PaidAt,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}

	if model.FulfillmentID != nil && *model.FulfillmentID != "" {
		order.Fulfillment = &domain.FulfillmentInfo{
			FulfillmentID: *model.FulfillmentID,
			DeliveryNode:  pointy.StringValue(model.DeliveryNode, ""),
		}
		if model.ExecutionTime != nil {
			order.Fulfillment.ExecutionTime = *model.ExecutionTime
		}
	}

	order.AuditLog = make([]domain.AuditEntry, 0, len(model.AuditEntries))
	for _, entry := range model.AuditEntries {
		order.AuditLog = append(order.AuditLog, ToDomainAuditEntry(&entry))
	}

	return order
}

func ToGORMOrder(order *domain.Order) *models.OrderModel {
	model := &models.OrderModel{
		ID:               order.ID,
		PaymentReference: order.PaymentReference,
		InvoiceURL:       order.InvoiceURL,
		Amount:           order.Amount.Value,
		Currency:         order.Amount.Currency,
		AmountUSD:        order.AmountUSD,
		CustomerName:     order.CustomerName,
		CustomerEmail:    order.CustomerEmail,
		ProductName:      order.ProductName,
		Status:           string(order.Status),
		PaidAt:           order.PaidAt,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}

	if order.TxID != "" {
		model.TxID = pointy.String(order.TxID)
	}
	if order.DeliveryProofImage != "" {
		model.DeliveryProofImage = pointy.String(order.DeliveryProofImage)
	}
	if order.PaymentStatus != "" {
		model.PaymentStatus = pointy.String(order.PaymentStatus)
	}
	if order.Fulfillment != nil {
		model.FulfillmentID = pointy.String(order.Fulfillment.FulfillmentID)
		model.DeliveryNode = pointy.String(order.Fulfillment.DeliveryNode)
		model.ExecutionTime = pointy.Pointer(order.Fulfillment.ExecutionTime)
	}

	return model
}

func ToDomainAuditEntry(model *models.AuditEntryModel) domain.AuditEntry {
	return domain.AuditEntry{
		ID:          model.ID,
		At:          model.At,
		Actor:       model.Actor,
		Description: model.Description,
	}
}

func ToGORMAuditEntry(orderID string, seq int, entry domain.AuditEntry) *models.AuditEntryModel {
	return &models.AuditEntryModel{
		ID:          entry.ID,
		OrderID:     orderID,
		Seq:         seq,
		At:          entry.At,
		Actor:       entry.Actor,
		Description: entry.Description,
	}
}

// ToGORMOrderUpdates converts a patch into a column map for gorm Updates.
// Audit entries are not included, they are inserted as separate rows.
func ToGORMOrderUpdates(patch *domain.OrderPatch) map[string]interface{} {
	updates := make(map[string]interface{})
	if patch == nil {
		return updates
	}
	if patch.Status != nil {
		updates["status"] = string(*patch.Status)
	}
	if patch.TxID != nil {
		updates["tx_id"] = *patch.TxID
	}
	if patch.DeliveryProofImage != nil {
		updates["delivery_proof_image"] = *patch.DeliveryProofImage
	}
	if patch.Fulfillment != nil {
		updates["fulfillment_id"] = patch.Fulfillment.FulfillmentID
		updates["delivery_node"] = patch.Fulfillment.DeliveryNode
		updates["execution_time"] = patch.Fulfillment.ExecutionTime
	}
	if patch.PaymentStatus != nil {
		updates["payment_status"] = *patch.PaymentStatus
	}
	if patch.PaidAt != nil {
		updates["paid_at"] = *patch.PaidAt
	}
	return updates
}
