package setup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/wolf-checkout-service/internal/config"
	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	exchange "github.com/LavaJover/wolf-checkout-service/internal/infrastructure/exchange_providers"
	infralogger "github.com/LavaJover/wolf-checkout-service/internal/infrastructure/logger"
	"github.com/LavaJover/wolf-checkout-service/internal/infrastructure/notifier"
	"github.com/LavaJover/wolf-checkout-service/internal/infrastructure/nowpayments"
	"github.com/LavaJover/wolf-checkout-service/internal/usecase"
	"github.com/LavaJover/wolf-checkout-service/internal/usecase/fulfillment"
	orderusecase "github.com/LavaJover/wolf-checkout-service/internal/usecase/order"
	"github.com/shopspring/decimal"
)

type UseCases struct {
	OrderUsecase          orderusecase.OrderUsecase
	UncreatedOrderUsecase usecase.UncreatedOrderUsecase
	ExchangeRateService   usecase.ExchangeRateService
	Scheduler             *fulfillment.Scheduler
	Payments              *nowpayments.Client
}

func InitializeUseCases(deps *Dependencies) (*UseCases, error) {
	cfg := deps.Config
	logger := deps.Logger

	orderCfg, err := orderConfig(cfg)
	if err != nil {
		return nil, err
	}
	fallbackRate, err := decimal.NewFromString(cfg.ExchangeRate.FallbackRate)
	if err != nil {
		return nil, fmt.Errorf("exchange_rate.fallback_rate: %w", err)
	}

	exchangeRateService := usecase.NewDefaultExchangeRateService(
		domain.CurrencyPair{Base: orderusecase.CurrencyUSD, Quote: strings.ToUpper(cfg.ExchangeRate.Quote)},
		fallbackRate,
		deps.Metrics,
		logger,
		exchange.NewExchangeRateAPIProvider("exchangerate-api", cfg.ExchangeRate.URL, cfg.ExchangeRate.Timeout),
		exchange.NewExchangeRateAPIProvider("open-er-api", cfg.ExchangeRate.FallbackURL, cfg.ExchangeRate.Timeout),
	)

	payments := nowpayments.NewClient(nowpayments.Config{
		BaseURL:        cfg.NowPayments.BaseURL,
		APIKey:         cfg.NowPayments.APIKey,
		IPNSecret:      cfg.NowPayments.IPNSecret,
		PayCurrency:    cfg.NowPayments.PayCurrency,
		IPNCallbackURL: ipnCallbackURL(cfg),
		Timeout:        cfg.NowPayments.Timeout,
	}, logger)

	mailer := notifier.NewSMTPMailer(notifier.SMTPConfig{
		Host:               cfg.SMTP.Host,
		Port:               cfg.SMTP.Port,
		Username:           cfg.SMTP.Username,
		Password:           cfg.SMTP.Password,
		From:               cfg.SMTP.From,
		InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		Timeout:            cfg.SMTP.Timeout,
	}, logger, deps.Metrics)

	var operators domain.OperatorNotifier
	if cfg.Telegram.BotToken != "" && len(cfg.Telegram.ChatIDs) > 0 {
		operators = notifier.NewTelegramNotifier(notifier.TelegramConfig{
			BaseURL:  cfg.Telegram.BaseURL,
			BotToken: cfg.Telegram.BotToken,
			ChatIDs:  cfg.Telegram.ChatIDs,
			Timeout:  cfg.Telegram.Timeout,
		}, logger, deps.Metrics)
	} else {
		logger.Warn("telegram is not configured, operator messages go to the log")
		operators = notifier.NewLogNotifier(logger)
	}

	uncreatedOrderUsecase := usecase.NewDefaultUncreatedOrderUsecase(deps.Repositories.UncreatedOrderRepo)

	// The scheduler and the usecase reference each other; the callback
	// resolves the usecase once it exists.
	var orderUsecase *orderusecase.DefaultOrderUsecase
	scheduler := fulfillment.NewScheduler(func(ctx context.Context, orderID string) error {
		_, err := orderUsecase.CompleteOrder(ctx, orderID, domain.TriggerAuto)
		return err
	}, deps.Metrics, logger, cfg.Fulfillment.EmailTimeout+30*time.Second)

	orderUsecase, err = orderusecase.NewDefaultOrderUsecase(
		orderCfg,
		deps.Repositories.OrderRepo,
		payments,
		exchangeRateService,
		scheduler,
		mailer,
		operators,
		deps.OrderEvents,
		infralogger.NewDefaultUncreatedOrdersLogger(uncreatedOrderUsecase, logger),
		deps.Metrics,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("order usecase: %w", err)
	}

	return &UseCases{
		OrderUsecase:          orderUsecase,
		UncreatedOrderUsecase: uncreatedOrderUsecase,
		ExchangeRateService:   exchangeRateService,
		Scheduler:             scheduler,
		Payments:              payments,
	}, nil
}

func orderConfig(cfg *config.CheckoutConfig) (orderusecase.Config, error) {
	minILS, err := decimal.NewFromString(cfg.Checkout.MinAmountILS)
	if err != nil {
		return orderusecase.Config{}, fmt.Errorf("checkout.min_amount_ils: %w", err)
	}
	minUSD, err := decimal.NewFromString(cfg.Checkout.MinAmountUSD)
	if err != nil {
		return orderusecase.Config{}, fmt.Errorf("checkout.min_amount_usd: %w", err)
	}

	return orderusecase.Config{
		BaseURL:                    cfg.HTTPServer.BaseURL,
		DefaultProduct:             cfg.Checkout.DefaultProduct,
		MinAmountILS:               minILS,
		MinAmountUSD:               minUSD,
		MinDelay:                   cfg.Fulfillment.MinDelay,
		MaxDelay:                   cfg.Fulfillment.MaxDelay,
		RequirePaymentConfirmation: cfg.Fulfillment.RequirePaymentConfirmation,
		DeliveryNodes:              cfg.Fulfillment.DeliveryNodes,
		InvoiceTimeout:             cfg.NowPayments.Timeout,
		EmailTimeout:               cfg.Fulfillment.EmailTimeout,
	}, nil
}

func ipnCallbackURL(cfg *config.CheckoutConfig) string {
	if cfg.NowPayments.IPNSecret == "" {
		return ""
	}
	return strings.TrimRight(cfg.HTTPServer.BaseURL, "/") + "/payments/ipn"
}
