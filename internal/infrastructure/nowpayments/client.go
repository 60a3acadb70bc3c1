package nowpayments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
)

const (
	defaultBaseURL = "https://api.nowpayments.io/v1"
	priceCurrency  = "usd"
)

type Config struct {
	BaseURL        string
	APIKey         string
	IPNSecret      string
	PayCurrency    string
	IPNCallbackURL string
	Timeout        time.Duration
}

// Client issues hosted invoices through the NOWPayments REST API.
type Client struct {
	baseURL        string
	apiKey         string
	ipnSecret      string
	payCurrency    string
	ipnCallbackURL string
	httpClient     *http.Client
	logger         *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:        baseURL,
		apiKey:         cfg.APIKey,
		ipnSecret:      cfg.IPNSecret,
		payCurrency:    cfg.PayCurrency,
		ipnCallbackURL: cfg.IPNCallbackURL,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger.With("component", "nowpayments"),
	}
}

func (c *Client) CreateInvoice(ctx context.Context, req domain.InvoiceRequest) (*domain.Invoice, error) {
	if !req.AmountUSD.IsPositive() {
		return nil, domain.NewValidationError("amount", "settlement amount must be positive")
	}

	body, err := json.Marshal(invoiceRequest{
		PriceAmount:      json.Number(req.AmountUSD.StringFixed(2)),
		PriceCurrency:    priceCurrency,
		PayCurrency:      c.payCurrency,
		OrderID:          req.OrderID,
		OrderDescription: req.Description,
		IPNCallbackURL:   c.ipnCallbackURL,
		SuccessURL:       req.SuccessURL,
		CancelURL:        req.CancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal invoice request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/invoice", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build invoice request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: invoice request failed: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read invoice response: %v", domain.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		_ = json.Unmarshal(raw, &apiErr)
		c.logger.Error("invoice rejected", "order_id", req.OrderID, "status", resp.StatusCode, "code", apiErr.Code, "message", apiErr.Message)
		return nil, fmt.Errorf("%w: nowpayments returned %d: %s", domain.ErrUpstreamUnavailable, resp.StatusCode, apiErr.Message)
	}

	var decoded invoiceResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: decode invoice response: %v", domain.ErrUpstreamUnavailable, err)
	}
	if decoded.ID == "" || decoded.InvoiceURL == "" {
		return nil, fmt.Errorf("%w: invoice response without id or url", domain.ErrUpstreamUnavailable)
	}

	c.logger.Info("invoice created", "order_id", req.OrderID, "invoice_id", string(decoded.ID), "amount_usd", req.AmountUSD.StringFixed(2))
	return &domain.Invoice{
		ID:  string(decoded.ID),
		URL: decoded.InvoiceURL,
	}, nil
}
