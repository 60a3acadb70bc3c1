package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// ExchangeRateProvider fetches a live quote for one currency pair.
type ExchangeRateProvider interface {
	GetRate(ctx context.Context, pair CurrencyPair) (decimal.Decimal, error)
	GetName() string
}

// CurrencyPair is quoted as units of Quote per one unit of Base.
type CurrencyPair struct {
	Base  string
	Quote string
}

func (p CurrencyPair) String() string {
	return p.Base + "/" + p.Quote
}

// RateSource hands out the last known rate without blocking on the network.
type RateSource interface {
	CurrentRate() decimal.Decimal
}
