package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	adminResponse "github.com/LavaJover/wolf-checkout-service/internal/delivery/http/dto/admin/response"
	checkoutRequest "github.com/LavaJover/wolf-checkout-service/internal/delivery/http/dto/checkout/request"
	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	infralogger "github.com/LavaJover/wolf-checkout-service/internal/infrastructure/logger"
	"github.com/LavaJover/wolf-checkout-service/internal/infrastructure/memory"
	"github.com/LavaJover/wolf-checkout-service/internal/infrastructure/metrics"
	"github.com/LavaJover/wolf-checkout-service/internal/infrastructure/nowpayments"
	"github.com/LavaJover/wolf-checkout-service/internal/usecase"
	orderusecase "github.com/LavaJover/wolf-checkout-service/internal/usecase/order"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAdminToken = "s3cret-admin"
	testIPNSecret  = "ipn-secret"
)

type stubInvoices struct {
	mu  sync.Mutex
	err error
}

func (s *stubInvoices) CreateInvoice(_ context.Context, req domain.InvoiceRequest) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Invoice{ID: "inv-" + req.OrderID, URL: "https://nowpayments.io/payment/?iid=inv-" + req.OrderID}, nil
}

type stubRate struct{}

func (stubRate) CurrentRate() decimal.Decimal { return decimal.RequireFromString("3.7") }

type noopScheduler struct{}

func (noopScheduler) Schedule(string, time.Duration) {}
func (noopScheduler) Cancel(string) bool             { return false }

type stubMailer struct {
	mu  sync.Mutex
	err error
}

func (m *stubMailer) Send(context.Context, domain.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

type server struct {
	handler  http.Handler
	repo     *memory.OrderRepository
	invoices *stubInvoices
	mailer   *stubMailer
}

func newServer(t *testing.T) *server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := prometheus.NewRegistry()

	s := &server{
		repo:     memory.NewOrderRepository(),
		invoices: &stubInvoices{},
		mailer:   &stubMailer{},
	}
	uncreated := usecase.NewDefaultUncreatedOrderUsecase(memory.NewUncreatedOrderRepository())

	orders, err := orderusecase.NewDefaultOrderUsecase(
		orderusecase.Config{
			BaseURL:        "https://wolf.example",
			DefaultProduct: "WOLF GAMING Credits",
			MinAmountILS:   decimal.NewFromInt(100),
			MinAmountUSD:   decimal.NewFromInt(31),
			MinDelay:       4 * time.Minute,
			MaxDelay:       8 * time.Minute,
			DeliveryNodes:  []string{"WOLF-NODE-TLV-01"},
		},
		s.repo,
		s.invoices,
		stubRate{},
		noopScheduler{},
		s.mailer,
		nil,
		nil,
		infralogger.NewDefaultUncreatedOrdersLogger(uncreated, logger),
		metrics.NewOrderMetrics(registry),
		logger,
	)
	require.NoError(t, err)

	payments := nowpayments.NewClient(nowpayments.Config{IPNSecret: testIPNSecret}, logger)

	s.handler = NewRouter(
		NewCheckoutHandler(orders, stubRate{}, payments, "WOLF GAMING Credits", logger),
		NewAdminHandler(orders, uncreated, testAdminToken, 1<<20, logger),
		registry,
	)
	return s
}

func (s *server) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *server) adminJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(adminTokenHeader, testAdminToken)
	return s.do(req)
}

func (s *server) checkout(t *testing.T, amount string) string {
	t.Helper()
	form := url.Values{
		"baseAmount":  {amount},
		"currency":    {"ILS"},
		"name":        {"Dana Levi"},
		"email":       {"dana@example.com"},
		"productName": {"Fortnite V-Bucks"},
	}
	req := httptest.NewRequest(http.MethodPost, "/process-payment", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := s.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	orders, err := s.repo.ListOrders(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, orders)
	return orders[0].ID
}

func TestIndexRedirectsToDefaultCheckout(t *testing.T) {
	s := newServer(t)
	rec := s.do(httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/checkout/100", rec.Header().Get("Location"))
	require.Equal(t, "true", rec.Header().Get("Bypass-Tunnel-Reminder"))
}

func TestCheckoutPage(t *testing.T) {
	s := newServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/checkout/120?p=Fortnite", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Fortnite")
	assert.Contains(t, rec.Body.String(), "32.43")

	rec = s.do(httptest.NewRequest(http.MethodGet, "/checkout/50", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Minimum order is 100 ILS")

	rec = s.do(httptest.NewRequest(http.MethodGet, "/checkout/30?curr=USD", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/checkout/abc", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessPaymentFormRedirectsToInvoice(t *testing.T) {
	s := newServer(t)
	orderID := s.checkout(t, "120")

	order, err := s.repo.GetOrderByID(context.Background(), orderID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusFulfilling, order.Status)
	require.Equal(t, "Fortnite V-Bucks", order.ProductName)
	require.True(t, order.AmountUSD.Equal(decimal.RequireFromString("32.43")))
}

func TestProcessPaymentJSONPrefersTotalAmount(t *testing.T) {
	s := newServer(t)

	body := `{"baseAmount":"100","totalAmount":150,"currency":"ILS","name":"Dana","email":"dana@example.com","productName":"Robux"}`
	req := httptest.NewRequest(http.MethodPost, "/process-payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := s.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res checkoutRequest.ProcessPaymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Contains(t, res.InvoiceURL, res.OrderID)

	order, err := s.repo.GetOrderByID(context.Background(), res.OrderID)
	require.NoError(t, err)
	require.True(t, order.Amount.Value.Equal(decimal.NewFromInt(150)))
}

func TestProcessPaymentRejectsSmallOrders(t *testing.T) {
	s := newServer(t)

	form := url.Values{"baseAmount": {"50"}, "name": {"Dana"}, "email": {"dana@example.com"}, "productName": {"Robux"}}
	req := httptest.NewRequest(http.MethodPost, "/process-payment", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := s.do(req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	orders, err := s.repo.ListOrders(context.Background())
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestProcessPaymentInvoiceFailure(t *testing.T) {
	s := newServer(t)
	s.invoices.err = errors.New("connection reset")

	form := url.Values{"baseAmount": {"120"}, "name": {"Dana"}, "email": {"dana@example.com"}, "productName": {"Robux"}}
	req := httptest.NewRequest(http.MethodPost, "/process-payment", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := s.do(req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Request Failed")

	req = httptest.NewRequest(http.MethodGet, "/admin/uncreated-orders?email=dana@example.com", nil)
	req.Header.Set(adminTokenHeader, testAdminToken)
	rec = s.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var logs []adminResponse.UncreatedOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].ErrorMessage, "connection reset")
}

func TestPayLinkCreatesWaitingOrder(t *testing.T) {
	s := newServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/pay/200", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "nowpayments.io")

	orders, err := s.repo.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, domain.StatusWaiting, orders[0].Status)
	require.Equal(t, "WOLF GAMING Credits", orders[0].ProductName)
}

func TestReceiptAndStaticPages(t *testing.T) {
	s := newServer(t)
	orderID := s.checkout(t, "120")

	rec := s.do(httptest.NewRequest(http.MethodGet, "/receipt?order_id="+orderID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), orderID)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/receipt?order_id=WOLF_404", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	for _, path := range []string{"/success?order_id=" + orderID, "/cancel", "/terms", "/healthz", "/metrics"} {
		rec := s.do(httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestAdminRequiresToken(t *testing.T) {
	s := newServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/admin/orders", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set(adminTokenHeader, "wrong")
	rec = s.do(req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/admin/orders?token="+testAdminToken, nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminLogin(t *testing.T) {
	s := newServer(t)

	form := url.Values{"password": {testAdminToken}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := s.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = s.do(req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var res adminResponse.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.False(t, res.Success)
}

func TestAdminListOrdersNewestFirst(t *testing.T) {
	s := newServer(t)
	first := s.checkout(t, "120")
	time.Sleep(2 * time.Millisecond)
	second := s.checkout(t, "130")

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set(adminTokenHeader, testAdminToken)
	rec := s.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var orders []adminResponse.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 2)
	require.Equal(t, second, orders[0].ID)
	require.Equal(t, first, orders[1].ID)
	require.Len(t, orders[0].AuditLog, 1)
}

func TestAdminMarkDelivered(t *testing.T) {
	s := newServer(t)
	orderID := s.checkout(t, "120")

	rec := s.adminJSON(t, "/admin/mark-delivered", map[string]string{"orderId": orderID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res adminResponse.MarkDeliveredResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.True(t, res.Success)
	require.False(t, res.AlreadyCompleted)
	require.NotEmpty(t, res.FulfillmentID)
	require.Equal(t, "completed", res.Order.Status)

	rec = s.adminJSON(t, "/admin/mark-delivered", map[string]string{"orderId": orderID})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.True(t, res.AlreadyCompleted)
	require.Len(t, res.Order.AuditLog, 2)

	rec = s.adminJSON(t, "/admin/mark-delivered", map[string]string{"orderId": "WOLF_404"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminMarkDeliveredEmailFailure(t *testing.T) {
	s := newServer(t)
	orderID := s.checkout(t, "120")
	s.mailer.err = errors.New("smtp down")

	rec := s.adminJSON(t, "/admin/mark-delivered", map[string]string{"orderId": orderID})
	require.Equal(t, http.StatusBadGateway, rec.Code)

	order, err := s.repo.GetOrderByID(context.Background(), orderID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusFulfilling, order.Status)
}

func TestAdminUpdateStatus(t *testing.T) {
	s := newServer(t)
	orderID := s.checkout(t, "120")

	rec := s.adminJSON(t, "/admin/update-status", map[string]string{"orderId": orderID, "status": "processing"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.adminJSON(t, "/admin/update-status", map[string]string{"orderId": orderID, "status": "shipped"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.adminJSON(t, "/admin/mark-delivered", map[string]string{"orderId": orderID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.adminJSON(t, "/admin/update-status", map[string]string{"orderId": orderID, "status": "pending"})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminUpdateDeliveryAndCertificates(t *testing.T) {
	s := newServer(t)
	orderID := s.checkout(t, "120")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("orderId", orderID))
	require.NoError(t, mw.WriteField("txid", "0xdeadbeef"))
	part, err := mw.CreateFormFile("image", "proof.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/update-delivery", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(adminTokenHeader, testAdminToken)
	rec := s.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	order, err := s.repo.GetOrderByID(context.Background(), orderID)
	require.NoError(t, err)
	require.Equal(t, "0xdeadbeef", order.TxID)
	require.True(t, strings.HasPrefix(order.DeliveryProofImage, "data:image/png;base64,"))

	rec = s.do(httptest.NewRequest(http.MethodGet, "/admin/proof/"+orderID+"?token="+testAdminToken, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "0xdeadbeef")
	assert.Contains(t, rec.Body.String(), `src="data:image/png;base64,`)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/admin/pod/"+orderID+"?token="+testAdminToken, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.adminJSON(t, "/admin/mark-delivered", map[string]string{"orderId": orderID})
	require.Equal(t, http.StatusOK, rec.Code)
	var res adminResponse.MarkDeliveredResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	rec = s.do(httptest.NewRequest(http.MethodGet, "/admin/pod/"+orderID+"?token="+testAdminToken, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), res.FulfillmentID)
	assert.Contains(t, rec.Body.String(), "WOLF-NODE-TLV-01")
}

func TestAdminUpdateDeliveryRequiresOrderID(t *testing.T) {
	s := newServer(t)

	form := url.Values{"txid": {"0xabc"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/update-delivery", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(adminTokenHeader, testAdminToken)
	rec := s.do(req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentIPN(t *testing.T) {
	s := newServer(t)
	orderID := s.checkout(t, "120")

	body := []byte(`{"payment_id":5077125051,"payment_status":"finished","order_id":"` + orderID + `","actually_paid":32.43,"pay_currency":"usdttrc20"}`)
	sig, err := nowpayments.Sign(body, testIPNSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/payments/ipn", bytes.NewReader(body))
	req.Header.Set(paymentSignatureHeader, sig)
	rec := s.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	order, err := s.repo.GetOrderByID(context.Background(), orderID)
	require.NoError(t, err)
	require.Equal(t, "finished", order.PaymentStatus)
	require.NotNil(t, order.PaidAt)

	req = httptest.NewRequest(http.MethodPost, "/payments/ipn", bytes.NewReader(body))
	req.Header.Set(paymentSignatureHeader, "bogus")
	rec = s.do(req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
