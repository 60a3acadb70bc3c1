package logger

import (
	"context"
	"log/slog"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	"github.com/LavaJover/wolf-checkout-service/internal/usecase"
)

// DefaultUncreatedOrdersLogger persists checkout attempts that never became
// orders. A failing store is logged and otherwise ignored.
type DefaultUncreatedOrdersLogger struct {
	loggerUsecase usecase.UncreatedOrderUsecase
	logger        *slog.Logger
}

func NewDefaultUncreatedOrdersLogger(loggerUsecase usecase.UncreatedOrderUsecase, logger *slog.Logger) *DefaultUncreatedOrdersLogger {
	return &DefaultUncreatedOrdersLogger{
		loggerUsecase: loggerUsecase,
		logger:        logger,
	}
}

func (l *DefaultUncreatedOrdersLogger) LogUncreatedOrder(ctx context.Context, event *domain.UncreatedOrder) {
	l.logger.Warn("order was not created",
		"order_id", event.OrderID,
		"amount", event.Amount.Value.String(),
		"currency", event.Amount.Currency,
		"reason", event.ErrorMessage)

	if err := l.loggerUsecase.LogEvent(ctx, event); err != nil {
		l.logger.Error("failed to persist uncreated order", "order_id", event.OrderID, "error", err)
	}
}
