package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	"github.com/shopspring/decimal"
)

type ExchangeRateService interface {
	domain.RateSource
	Refresh(ctx context.Context) error
	Snapshot() RateSnapshot
	GetAvailableProviders() []string
	HealthCheck(ctx context.Context) map[string]error
}

// RateRecorder receives the outcome of every provider call.
type RateRecorder interface {
	RecordRateRefresh(provider, pair string, rate float64, err error)
}

type RateSnapshot struct {
	Pair      domain.CurrencyPair
	Rate      decimal.Decimal
	Provider  string
	UpdatedAt time.Time
	Fallback  bool
}

// DefaultExchangeRateService owns the last known rate of one currency pair.
// Readers never wait on the network; Refresh is driven by a background task.
type DefaultExchangeRateService struct {
	pair      domain.CurrencyPair
	providers []domain.ExchangeRateProvider
	recorder  RateRecorder
	logger    *slog.Logger

	mu     sync.RWMutex
	cached RateSnapshot
}

func NewDefaultExchangeRateService(
	pair domain.CurrencyPair,
	fallbackRate decimal.Decimal,
	recorder RateRecorder,
	logger *slog.Logger,
	providers ...domain.ExchangeRateProvider,
) *DefaultExchangeRateService {
	return &DefaultExchangeRateService{
		pair:      pair,
		providers: providers,
		recorder:  recorder,
		logger:    logger.With("component", "exchange_rate_service", "pair", pair.String()),
		cached: RateSnapshot{
			Pair:     pair,
			Rate:     fallbackRate,
			Provider: "fallback",
			Fallback: true,
		},
	}
}

func (s *DefaultExchangeRateService) CurrentRate() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cached.Rate
}

func (s *DefaultExchangeRateService) Snapshot() RateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cached
}

// Refresh asks each provider in order until one answers. On total failure the
// previous rate stays in place and the joined provider errors are returned.
func (s *DefaultExchangeRateService) Refresh(ctx context.Context) error {
	if len(s.providers) == 0 {
		return fmt.Errorf("%w: no exchange providers registered", domain.ErrUpstreamUnavailable)
	}

	var errs []error
	for i, provider := range s.providers {
		rate, err := provider.GetRate(ctx, s.pair)
		if s.recorder != nil {
			s.recorder.RecordRateRefresh(provider.GetName(), s.pair.String(), rate.InexactFloat64(), err)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", provider.GetName(), err))
			continue
		}

		if i > 0 {
			s.logger.Warn("Using fallback exchange provider",
				"primary", s.providers[0].GetName(),
				"fallback", provider.GetName())
		}

		s.mu.Lock()
		s.cached = RateSnapshot{
			Pair:      s.pair,
			Rate:      rate,
			Provider:  provider.GetName(),
			UpdatedAt: time.Now(),
		}
		s.mu.Unlock()

		s.logger.Info("exchange rate refreshed", "provider", provider.GetName(), "rate", rate.String())
		return nil
	}

	current := s.Snapshot()
	s.logger.Warn("all exchange providers failed, keeping last known rate",
		"rate", current.Rate.String(),
		"provider", current.Provider,
		"error", errors.Join(errs...))
	return fmt.Errorf("%w: all exchange providers failed: %w", domain.ErrUpstreamUnavailable, errors.Join(errs...))
}

func (s *DefaultExchangeRateService) GetAvailableProviders() []string {
	names := make([]string, 0, len(s.providers))
	for _, provider := range s.providers {
		names = append(names, provider.GetName())
	}
	return names
}

func (s *DefaultExchangeRateService) HealthCheck(ctx context.Context) map[string]error {
	errs := make(map[string]error)
	for _, provider := range s.providers {
		if _, err := provider.GetRate(ctx, s.pair); err != nil {
			errs[provider.GetName()] = err
		}
	}
	return errs
}
