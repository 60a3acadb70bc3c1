package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	orderdto "github.com/LavaJover/wolf-checkout-service/internal/usecase/dto/order"
	"github.com/shopspring/decimal"
)

const (
	CurrencyILS = "ILS"
	CurrencyUSD = "USD"

	actorSystem = "system"
)

func (uc *DefaultOrderUsecase) CreateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*orderdto.CreateOrderOutput, error) {
	input.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))
	if input.Currency == "" {
		input.Currency = CurrencyILS
	}
	input.ProductName = strings.TrimSpace(input.ProductName)
	if input.ProductName == "" && input.Source == orderdto.SourcePayLink {
		input.ProductName = uc.cfg.DefaultProduct
	}

	if err := uc.validateCreateInput(input); err != nil {
		uc.recordOrderRejected("validation")
		return nil, err
	}

	amountUSD, err := uc.convertToUSD(input.Amount, input.Currency)
	if err != nil {
		uc.recordOrderRejected("conversion")
		return nil, err
	}

	orderID := uc.newOrderID()

	invoice, err := uc.issueInvoice(ctx, orderID, input, amountUSD)
	if err != nil {
		uc.recordOrderRejected("invoice")
		uc.logUncreatedOrder(ctx, orderID, input, amountUSD, err)
		return nil, err
	}

	now := uc.now()
	order := &domain.Order{
		ID:               orderID,
		PaymentReference: invoice.ID,
		InvoiceURL:       invoice.URL,
		Amount: domain.Money{
			Value:    input.Amount,
			Currency: input.Currency,
		},
		AmountUSD:     amountUSD,
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerEmail: strings.TrimSpace(input.CustomerEmail),
		ProductName:   input.ProductName,
		Status:        initialStatus(input.Source),
		AuditLog: []domain.AuditEntry{{
			At:          now,
			Actor:       actorSystem,
			Description: fmt.Sprintf("Order Initialized: %s %s (%s USD), invoice %s", input.Amount.StringFixed(2), input.Currency, amountUSD.StringFixed(2), invoice.ID),
		}},
		CreatedAt: now,
	}

	if err := uc.OrderRepo.CreateOrder(ctx, order); err != nil {
		uc.recordError("create_order", "persist")
		uc.logUncreatedOrder(ctx, orderID, input, amountUSD, err)
		return nil, fmt.Errorf("failed to save order %s: %w", orderID, err)
	}

	uc.Logger.Info("order created",
		"order_id", order.ID,
		"invoice_id", order.PaymentReference,
		"amount", order.Amount.Value.StringFixed(2),
		"currency", order.Amount.Currency,
		"amount_usd", order.AmountUSD.StringFixed(2),
		"status", order.Status)

	uc.recordOrderCreatedMetrics(order)
	uc.notifyOperators(ctx, orderCreatedMessage(order))
	uc.publishEvent(orderEvent(order, domain.EventOrderCreated))

	if uc.cfg.RequirePaymentConfirmation {
		uc.Logger.Info("fulfillment waits for payment confirmation", "order_id", order.ID)
	} else {
		uc.Scheduler.Schedule(order.ID, uc.fulfillmentDelay())
	}

	return &orderdto.CreateOrderOutput{
		Order:      order,
		InvoiceURL: invoice.URL,
	}, nil
}

// ValidateAmount enforces the per-currency checkout minimum.
func (uc *DefaultOrderUsecase) ValidateAmount(amount decimal.Decimal, currency string) error {
	var minimum decimal.Decimal
	switch strings.ToUpper(currency) {
	case CurrencyILS, "":
		minimum = uc.cfg.MinAmountILS
	case CurrencyUSD:
		minimum = uc.cfg.MinAmountUSD
	default:
		return domain.NewValidationError("currency", fmt.Sprintf("unsupported currency %q", currency))
	}

	if amount.LessThan(minimum) {
		return domain.NewValidationError("amount", fmt.Sprintf("minimum order is %s %s", minimum.String(), strings.ToUpper(currency)))
	}
	return nil
}

func (uc *DefaultOrderUsecase) validateCreateInput(input *orderdto.CreateOrderInput) error {
	if err := uc.ValidateAmount(input.Amount, input.Currency); err != nil {
		return err
	}
	if input.ProductName == "" {
		return domain.NewValidationError("productName", "is required")
	}
	if input.Source == orderdto.SourcePayLink && input.CustomerEmail == "" {
		return nil
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		return domain.NewValidationError("name", "is required")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(input.CustomerEmail))
	if err != nil || addr.Address != strings.TrimSpace(input.CustomerEmail) {
		return domain.NewValidationError("email", "is not a valid address")
	}
	return nil
}

// convertToUSD returns the settlement amount, rounded to cents.
func (uc *DefaultOrderUsecase) convertToUSD(amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	if currency == CurrencyUSD {
		return amount.Round(2), nil
	}
	rate := uc.Rates.CurrentRate()
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: no usable exchange rate", domain.ErrUpstreamUnavailable)
	}
	return amount.DivRound(rate, 2), nil
}

func (uc *DefaultOrderUsecase) issueInvoice(ctx context.Context, orderID string, input *orderdto.CreateOrderInput, amountUSD decimal.Decimal) (*domain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.cfg.InvoiceTimeout)
	defer cancel()

	started := time.Now()
	invoice, err := uc.Invoices.CreateInvoice(ctx, domain.InvoiceRequest{
		AmountUSD:     amountUSD,
		OrderID:       orderID,
		Description:   input.ProductName,
		CustomerEmail: input.CustomerEmail,
		SuccessURL:    strings.TrimRight(uc.cfg.BaseURL, "/") + "/success?order_id=" + orderID,
		CancelURL:     strings.TrimRight(uc.cfg.BaseURL, "/") + "/cancel",
	})
	uc.recordInvoiceRequest(time.Since(started), err)
	if err != nil {
		uc.Logger.Error("failed to create invoice", "order_id", orderID, "error", err)
		if errors.Is(err, domain.ErrUpstreamUnavailable) || errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	return invoice, nil
}

func (uc *DefaultOrderUsecase) logUncreatedOrder(ctx context.Context, orderID string, input *orderdto.CreateOrderInput, amountUSD decimal.Decimal, cause error) {
	if uc.UncreatedLog == nil {
		return
	}
	uc.UncreatedLog.LogUncreatedOrder(ctx, &domain.UncreatedOrder{
		OrderID: orderID,
		Amount: domain.Money{
			Value:    input.Amount,
			Currency: input.Currency,
		},
		AmountUSD:     amountUSD,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		ProductName:   input.ProductName,
		ErrorMessage:  cause.Error(),
		CreatedAt:     uc.now(),
	})
}

func initialStatus(source orderdto.CheckoutSource) domain.OrderStatus {
	if source == orderdto.SourcePayLink {
		return domain.StatusWaiting
	}
	return domain.StatusFulfilling
}
