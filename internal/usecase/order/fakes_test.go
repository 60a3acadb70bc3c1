package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	"github.com/LavaJover/wolf-checkout-service/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeInvoices struct {
	mu       sync.Mutex
	err      error
	requests []domain.InvoiceRequest
}

func (f *fakeInvoices) CreateInvoice(_ context.Context, req domain.InvoiceRequest) (*domain.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Invoice{
		ID:  "inv-" + req.OrderID,
		URL: "https://nowpayments.io/payment/?iid=inv-" + req.OrderID,
	}, nil
}

func (f *fakeInvoices) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fixedRate decimal.Decimal

func (r fixedRate) CurrentRate() decimal.Decimal { return decimal.Decimal(r) }

type scheduled struct {
	orderID string
	delay   time.Duration
}

type fakeScheduler struct {
	mu        sync.Mutex
	scheduled []scheduled
	cancelled []string
}

func (s *fakeScheduler) Schedule(orderID string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, scheduled{orderID: orderID, delay: delay})
}

func (s *fakeScheduler) Cancel(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, orderID)
	return true
}

func (s *fakeScheduler) scheduledIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.scheduled))
	for _, sc := range s.scheduled {
		ids = append(ids, sc.orderID)
	}
	return ids
}

type fakeMailer struct {
	mu    sync.Mutex
	err   error
	sent  []domain.Email
	delay time.Duration
}

func (m *fakeMailer) Send(_ context.Context, email domain.Email) error {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func (m *fakeMailer) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fakeOperators struct {
	mu       sync.Mutex
	messages []string
}

func (o *fakeOperators) Notify(_ context.Context, message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, message)
}

type fakeUncreatedLog struct {
	mu     sync.Mutex
	events []*domain.UncreatedOrder
}

func (l *fakeUncreatedLog) LogUncreatedOrder(_ context.Context, event *domain.UncreatedOrder) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

type fixture struct {
	uc        *DefaultOrderUsecase
	repo      *memory.OrderRepository
	invoices  *fakeInvoices
	scheduler *fakeScheduler
	mailer    *fakeMailer
	operators *fakeOperators
	uncreated *fakeUncreatedLog
}

func testConfig() Config {
	return Config{
		BaseURL:        "https://wolf.example",
		DefaultProduct: "WOLF GAMING Credits",
		MinAmountILS:   decimal.NewFromInt(100),
		MinAmountUSD:   decimal.NewFromInt(31),
		MinDelay:       4 * time.Minute,
		MaxDelay:       8 * time.Minute,
		DeliveryNodes:  []string{"WOLF-NODE-TLV-01", "WOLF-NODE-FRA-02"},
		InvoiceTimeout: time.Second,
		EmailTimeout:   time.Second,
	}
}

func newFixture(t *testing.T, mutate ...func(*Config)) *fixture {
	t.Helper()

	cfg := testConfig()
	for _, m := range mutate {
		m(&cfg)
	}

	f := &fixture{
		repo:      memory.NewOrderRepository(),
		invoices:  &fakeInvoices{},
		scheduler: &fakeScheduler{},
		mailer:    &fakeMailer{},
		operators: &fakeOperators{},
		uncreated: &fakeUncreatedLog{},
	}

	uc, err := NewDefaultOrderUsecase(
		cfg,
		f.repo,
		f.invoices,
		fixedRate(decimal.RequireFromString("3.7")),
		f.scheduler,
		f.mailer,
		f.operators,
		nil,
		f.uncreated,
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	require.NoError(t, err)
	f.uc = uc
	return f
}

func (f *fixture) createCheckoutOrder(t *testing.T, amount string) *domain.Order {
	t.Helper()
	out, err := f.uc.CreateOrder(context.Background(), checkoutInput(amount))
	require.NoError(t, err)
	return out.Order
}

func (f *fixture) storedOrder(t *testing.T, orderID string) *domain.Order {
	t.Helper()
	order, err := f.repo.GetOrderByID(context.Background(), orderID)
	require.NoError(t, err)
	return order
}

var errSMTPDown = errors.New("smtp: connection refused")
