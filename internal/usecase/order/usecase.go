package usecase

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	"github.com/LavaJover/wolf-checkout-service/internal/infrastructure/metrics"
	orderdto "github.com/LavaJover/wolf-checkout-service/internal/usecase/dto/order"
	nanoid "github.com/jaevor/go-nanoid"
	"github.com/shopspring/decimal"
)

const (
	orderIDPrefix   = "WOLF_"
	orderIDAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"
)

type OrderUsecase interface {
	CreateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*orderdto.CreateOrderOutput, error)
	CompleteOrder(ctx context.Context, orderID string, trigger domain.Trigger) (*orderdto.CompletionResult, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)
	UpdateDelivery(ctx context.Context, input *orderdto.UpdateDeliveryInput) (*domain.Order, error)
	ApplyPaymentUpdate(ctx context.Context, update *domain.PaymentUpdate) (*domain.Order, error)
	RearmOpenOrders(ctx context.Context) (int, error)

	ValidateAmount(amount decimal.Decimal, currency string) error
	GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
}

// UncreatedOrdersLogger records checkout attempts that never became orders.
type UncreatedOrdersLogger interface {
	LogUncreatedOrder(ctx context.Context, event *domain.UncreatedOrder)
}

type Config struct {
	BaseURL                    string
	DefaultProduct             string
	MinAmountILS               decimal.Decimal
	MinAmountUSD               decimal.Decimal
	MinDelay                   time.Duration
	MaxDelay                   time.Duration
	RequirePaymentConfirmation bool
	DeliveryNodes              []string
	InvoiceTimeout             time.Duration
	EmailTimeout               time.Duration
}

type DefaultOrderUsecase struct {
	OrderRepo    domain.OrderRepository
	Invoices     domain.InvoiceIssuer
	Rates        domain.RateSource
	Scheduler    domain.FulfillmentScheduler
	Mailer       domain.Mailer
	Operators    domain.OperatorNotifier
	Publisher    domain.OrderEventPublisher
	UncreatedLog UncreatedOrdersLogger
	Metrics      *metrics.OrderMetrics
	Logger       *slog.Logger
	cfg          Config

	now              func() time.Time
	newOrderID       func() string
	newFulfillmentID func() string
	randInt64N       func(n int64) int64
}

func NewDefaultOrderUsecase(
	cfg Config,
	orderRepo domain.OrderRepository,
	invoices domain.InvoiceIssuer,
	rates domain.RateSource,
	scheduler domain.FulfillmentScheduler,
	mailer domain.Mailer,
	operators domain.OperatorNotifier,
	publisher domain.OrderEventPublisher,
	uncreatedLog UncreatedOrdersLogger,
	orderMetrics *metrics.OrderMetrics,
	logger *slog.Logger,
) (*DefaultOrderUsecase, error) {
	orderIDGenerator, err := nanoid.CustomASCII(orderIDAlphabet, 12)
	if err != nil {
		return nil, err
	}
	fulfillmentIDGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, err
	}

	if len(cfg.DeliveryNodes) == 0 {
		cfg.DeliveryNodes = []string{"WOLF-NODE-01"}
	}
	if cfg.InvoiceTimeout <= 0 {
		cfg.InvoiceTimeout = 10 * time.Second
	}
	if cfg.EmailTimeout <= 0 {
		cfg.EmailTimeout = 10 * time.Second
	}

	return &DefaultOrderUsecase{
		OrderRepo:    orderRepo,
		Invoices:     invoices,
		Rates:        rates,
		Scheduler:    scheduler,
		Mailer:       mailer,
		Operators:    operators,
		Publisher:    publisher,
		UncreatedLog: uncreatedLog,
		Metrics:      orderMetrics,
		Logger:       logger.With("component", "order_usecase"),
		cfg:          cfg,

		now: time.Now,
		newOrderID: func() string {
			return orderIDPrefix + orderIDGenerator()
		},
		newFulfillmentID: fulfillmentIDGenerator,
		randInt64N:       rand.Int63n,
	}, nil
}

// fulfillmentDelay draws uniformly from [MinDelay, MaxDelay].
func (uc *DefaultOrderUsecase) fulfillmentDelay() time.Duration {
	spread := int64(uc.cfg.MaxDelay - uc.cfg.MinDelay)
	if spread <= 0 {
		return uc.cfg.MinDelay
	}
	return uc.cfg.MinDelay + time.Duration(uc.randInt64N(spread+1))
}

func (uc *DefaultOrderUsecase) pickDeliveryNode() string {
	return uc.cfg.DeliveryNodes[uc.randInt64N(int64(len(uc.cfg.DeliveryNodes)))]
}

// publishEvent streams the event in the background; failures are only logged.
func (uc *DefaultOrderUsecase) publishEvent(event domain.OrderEvent) {
	if uc.Publisher == nil {
		return
	}
	go func(event domain.OrderEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := uc.Publisher.PublishOrderEvent(ctx, event); err != nil {
			uc.Logger.Error("failed to publish order event", "order_id", event.OrderID, "event", event.Event, "error", err)
			uc.recordNotificationFailure("kafka")
		}
	}(event)
}

func (uc *DefaultOrderUsecase) notifyOperators(ctx context.Context, message string) {
	if uc.Operators == nil {
		return
	}
	uc.Operators.Notify(ctx, message)
}

func orderEvent(order *domain.Order, event string) domain.OrderEvent {
	return domain.OrderEvent{
		OrderID:     order.ID,
		Event:       event,
		Status:      order.Status,
		Amount:      order.Amount,
		ProductName: order.ProductName,
	}
}
