package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	"github.com/shopspring/decimal"
)

// ExchangeRateAPIProvider reads "latest" tables in the exchangerate-api.com
// format: {"base":"USD","rates":{"ILS":3.7,...}}.
type ExchangeRateAPIProvider struct {
	name   string
	url    string
	client *http.Client
}

type latestRatesResponse struct {
	Result   string                     `json:"result,omitempty"`
	Base     string                     `json:"base,omitempty"`
	BaseCode string                     `json:"base_code,omitempty"`
	Rates    map[string]decimal.Decimal `json:"rates"`
}

func NewExchangeRateAPIProvider(name, url string, timeout time.Duration) *ExchangeRateAPIProvider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ExchangeRateAPIProvider{
		name: name,
		url:  url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (p *ExchangeRateAPIProvider) GetName() string {
	return p.name
}

func (p *ExchangeRateAPIProvider) GetRate(ctx context.Context, pair domain.CurrencyPair) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get rates from %s: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%s API returned status: %d", p.name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read response body: %w", err)
	}

	var latest latestRatesResponse
	if err := json.Unmarshal(body, &latest); err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse %s response: %w", p.name, err)
	}
	if latest.Result != "" && latest.Result != "success" {
		return decimal.Zero, fmt.Errorf("%s returned result %q", p.name, latest.Result)
	}

	base := latest.Base
	if base == "" {
		base = latest.BaseCode
	}
	if base != "" && !strings.EqualFold(base, pair.Base) {
		return decimal.Zero, fmt.Errorf("%s quotes base %s, want %s", p.name, base, pair.Base)
	}

	rate, ok := latest.Rates[strings.ToUpper(pair.Quote)]
	if !ok {
		return decimal.Zero, fmt.Errorf("%s has no rate for %s", p.name, pair)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s returned non-positive rate %s for %s", p.name, rate, pair)
	}

	return rate, nil
}
