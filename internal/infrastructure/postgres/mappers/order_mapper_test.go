package mappers

import (
	"testing"
	"time"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	"github.com/LavaJover/wolf-checkout-service/internal/infrastructure/postgres/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.openly.dev/pointy"
)

func TestToDomainOrderReadsLegacyRowsAsEmpty(t *testing.T) {
	order := ToDomainOrder(&models.OrderModel{
		ID:               "WOLF_1",
		PaymentReference: "inv-1",
		Amount:           decimal.NewFromInt(120),
		Currency:         "ILS",
		AmountUSD:        decimal.RequireFromString("32.43"),
		Status:           "fulfilling",
	})

	require.Empty(t, order.TxID)
	require.Empty(t, order.DeliveryProofImage)
	require.Empty(t, order.PaymentStatus)
	require.Nil(t, order.PaidAt)
	require.Nil(t, order.Fulfillment)
	require.NotNil(t, order.AuditLog)
	require.Empty(t, order.AuditLog)
}

func TestOrderModelRoundTrip(t *testing.T) {
	executed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	order := &domain.Order{
		ID:                 "WOLF_2",
		PaymentReference:   "inv-2",
		Amount:             domain.Money{Value: decimal.NewFromInt(150), Currency: "ILS"},
		AmountUSD:          decimal.RequireFromString("40.54"),
		CustomerEmail:      "dana@example.com",
		Status:             domain.StatusCompleted,
		TxID:               "0xabc",
		DeliveryProofImage: "data:image/png;base64,AA==",
		Fulfillment: &domain.FulfillmentInfo{
			FulfillmentID: "f-1",
			DeliveryNode:  "WOLF-NODE-TLV-01",
			ExecutionTime: executed,
		},
	}

	model := ToGORMOrder(order)
	require.Equal(t, "0xabc", pointy.StringValue(model.TxID, ""))
	require.Nil(t, model.PaymentStatus)
	model.AuditEntries = []models.AuditEntryModel{
		*ToGORMAuditEntry(order.ID, 0, domain.AuditEntry{ID: "a", Actor: "system", Description: "Order Initialized"}),
		*ToGORMAuditEntry(order.ID, 1, domain.AuditEntry{ID: "b", Actor: "Manual", Description: "Delivery executed"}),
	}

	back := ToDomainOrder(model)
	require.Equal(t, order.TxID, back.TxID)
	require.Equal(t, order.DeliveryProofImage, back.DeliveryProofImage)
	require.Equal(t, *order.Fulfillment, *back.Fulfillment)
	require.Len(t, back.AuditLog, 2)
	require.Equal(t, "Delivery executed", back.AuditLog[1].Description)
}

func TestToGORMOrderUpdates(t *testing.T) {
	status := domain.StatusProcessing
	updates := ToGORMOrderUpdates(&domain.OrderPatch{
		Status:      &status,
		TxID:        pointy.String("tx"),
		AppendAudit: []domain.AuditEntry{{Description: "ignored"}},
	})

	require.Equal(t, map[string]interface{}{
		"status": "processing",
		"tx_id":  "tx",
	}, updates)
	require.Empty(t, ToGORMOrderUpdates(nil))
}
