package setup

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/LavaJover/wolf-checkout-service/internal/config"
	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	publisher "github.com/LavaJover/wolf-checkout-service/internal/infrastructure/kafka"
	"github.com/LavaJover/wolf-checkout-service/internal/infrastructure/memory"
	"github.com/LavaJover/wolf-checkout-service/internal/infrastructure/metrics"
	"github.com/LavaJover/wolf-checkout-service/internal/infrastructure/postgres"
	"github.com/LavaJover/wolf-checkout-service/internal/infrastructure/postgres/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config         *config.CheckoutConfig
	Logger         *slog.Logger
	DB             *gorm.DB
	Registry       *prometheus.Registry
	Metrics        *metrics.OrderMetrics
	KafkaPublisher *publisher.DefaultKafkaPublisher
	OrderEvents    domain.OrderEventPublisher
	Repositories   *Repositories
}

type Repositories struct {
	OrderRepo          domain.OrderRepository
	UncreatedOrderRepo domain.UncreatedOrderRepository
}

func InitializeDependencies(cfg *config.CheckoutConfig, logger *slog.Logger) (*Dependencies, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Metrics:  metrics.NewOrderMetrics(registry),
	}

	switch cfg.OrderDB.Driver {
	case "memory":
		logger.Warn("using in-memory order store, orders are lost on restart")
		deps.Repositories = &Repositories{
			OrderRepo:          memory.NewOrderRepository(),
			UncreatedOrderRepo: memory.NewUncreatedOrderRepository(),
		}
	default:
		deps.DB = postgres.MustInitDB(cfg)
		deps.Repositories = &Repositories{
			OrderRepo:          repository.NewDefaultOrderRepository(deps.DB),
			UncreatedOrderRepo: repository.NewDefaultUncreatedOrderRepository(deps.DB),
		}
	}

	if cfg.KafkaService.Enabled {
		kafkaPublisher, err := initKafkaPublisher(cfg)
		if err != nil {
			return nil, fmt.Errorf("order publisher: %w", err)
		}
		deps.KafkaPublisher = kafkaPublisher
		deps.OrderEvents = publisher.NewOrderEventPublisher(kafkaPublisher, cfg.KafkaService.Topic)
		logger.Info("order events enabled", "topic", cfg.KafkaService.Topic)
	}

	return deps, nil
}

func initKafkaPublisher(cfg *config.CheckoutConfig) (*publisher.DefaultKafkaPublisher, error) {
	return publisher.NewKafkaPublisher(publisher.KafkaConfig{
		Brokers:    []string{net.JoinHostPort(cfg.KafkaService.Host, cfg.KafkaService.Port)},
		Username:   cfg.KafkaService.Username,
		Password:   cfg.KafkaService.Password,
		Mechanism:  cfg.KafkaService.Mechanism,
		TLSEnabled: cfg.KafkaService.TLSEnabled,
	})
}

// Close releases the broker connection and the database pool.
func (d *Dependencies) Close() {
	if d.KafkaPublisher != nil {
		if err := d.KafkaPublisher.Close(); err != nil {
			d.Logger.Error("failed to close kafka publisher", "error", err)
		}
	}
	if d.DB != nil {
		if sqlDB, err := d.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
