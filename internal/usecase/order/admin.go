package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	orderdto "github.com/LavaJover/wolf-checkout-service/internal/usecase/dto/order"
)

const actorAdmin = "admin"

// UpdateStatus rewrites the status of an open order. It never touches timers
// or fulfillment fields; completion goes through CompleteOrder only.
func (uc *DefaultOrderUsecase) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	status = domain.OrderStatus(strings.ToLower(strings.TrimSpace(string(status))))
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	if status == domain.StatusCompleted {
		return nil, fmt.Errorf("%w: use mark-delivered to complete an order", domain.ErrInvalidStatus)
	}

	updated, err := uc.OrderRepo.UpdateOrderFunc(ctx, orderID, func(current *domain.Order) (*domain.OrderPatch, error) {
		if !current.Status.IsOpen() {
			return nil, fmt.Errorf("%w: order %s is %s", domain.ErrOrderFinalized, current.ID, current.Status)
		}
		return &domain.OrderPatch{
			Status: &status,
			AppendAudit: []domain.AuditEntry{{
				At:          uc.now(),
				Actor:       actorAdmin,
				Description: fmt.Sprintf("Status changed to %s", status),
			}},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	uc.Logger.Info("order status changed", "order_id", orderID, "status", status)
	uc.recordStatusChange(status)
	uc.publishEvent(orderEvent(updated, domain.EventOrderStatusChanged))

	return updated, nil
}

// UpdateDelivery attaches a txid and/or a proof image. Each field is last
// write wins and independent of status.
func (uc *DefaultOrderUsecase) UpdateDelivery(ctx context.Context, input *orderdto.UpdateDeliveryInput) (*domain.Order, error) {
	if input.TxID == nil && input.DeliveryProofImage == nil {
		return nil, domain.NewValidationError("txid", "txid or image is required")
	}

	var attached []string
	if input.TxID != nil {
		attached = append(attached, "TXID "+*input.TxID)
	}
	if input.DeliveryProofImage != nil {
		attached = append(attached, "proof image")
	}

	updated, err := uc.OrderRepo.UpdateOrder(ctx, input.OrderID, &domain.OrderPatch{
		TxID:               input.TxID,
		DeliveryProofImage: input.DeliveryProofImage,
		AppendAudit: []domain.AuditEntry{{
			At:          uc.now(),
			Actor:       actorAdmin,
			Description: "Delivery details attached: " + strings.Join(attached, ", "),
		}},
	})
	if err != nil {
		return nil, err
	}

	uc.Logger.Info("delivery details updated", "order_id", input.OrderID, "txid", input.TxID != nil, "image", input.DeliveryProofImage != nil)
	return updated, nil
}
