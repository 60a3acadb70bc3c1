package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	checkoutRequest "github.com/LavaJover/wolf-checkout-service/internal/delivery/http/dto/checkout/request"
	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	orderdto "github.com/LavaJover/wolf-checkout-service/internal/usecase/dto/order"
	orderusecase "github.com/LavaJover/wolf-checkout-service/internal/usecase/order"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

const (
	defaultCheckoutAmount  = "100"
	maxIPNBodyBytes        = 1 << 20
	paymentSignatureHeader = "x-nowpayments-sig"
)

// CheckoutHandler serves the storefront pages, the checkout form and the
// payment processor callbacks.
type CheckoutHandler struct {
	orders         orderusecase.OrderUsecase
	rates          domain.RateSource
	payments       domain.PaymentVerifier
	defaultProduct string
	logger         *slog.Logger
}

func NewCheckoutHandler(
	orders orderusecase.OrderUsecase,
	rates domain.RateSource,
	payments domain.PaymentVerifier,
	defaultProduct string,
	logger *slog.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		orders:         orders,
		rates:          rates,
		payments:       payments,
		defaultProduct: defaultProduct,
		logger:         logger.With("component", "checkout_handler"),
	}
}

func (h *CheckoutHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.Index).Methods(http.MethodGet)
	router.HandleFunc("/checkout/{amount}", h.Checkout).Methods(http.MethodGet)
	router.HandleFunc("/process-payment", h.ProcessPayment).Methods(http.MethodPost)
	router.HandleFunc("/pay/{amount}", h.PayLink).Methods(http.MethodGet)
	router.HandleFunc("/receipt", h.Receipt).Methods(http.MethodGet)
	router.HandleFunc("/success", h.Success).Methods(http.MethodGet)
	router.HandleFunc("/cancel", h.Cancel).Methods(http.MethodGet)
	router.HandleFunc("/terms", h.Terms).Methods(http.MethodGet)
	router.HandleFunc("/payments/ipn", h.PaymentIPN).Methods(http.MethodPost)
}

func (h *CheckoutHandler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/checkout/"+defaultCheckoutAmount, http.StatusFound)
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	amount, err := decimal.NewFromString(mux.Vars(r)["amount"])
	if err != nil {
		renderError(w, h.logger, http.StatusBadRequest, "Invalid amount", "The amount in the link is not a number.")
		return
	}

	currency := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("curr")))
	if currency == "" {
		currency = orderusecase.CurrencyILS
	}
	if err := h.orders.ValidateAmount(amount, currency); err != nil {
		renderError(w, h.logger, http.StatusBadRequest, "Invalid order", validationMessage(err))
		return
	}

	product := strings.TrimSpace(r.URL.Query().Get("p"))
	if product == "" {
		product = h.defaultProduct
	}

	page := checkoutPage{
		Title:       "Checkout",
		ProductName: product,
		Amount:      formatAmount(domain.Money{Value: amount, Currency: currency}),
		RawAmount:   amount.String(),
		Currency:    currency,
	}
	if currency == orderusecase.CurrencyUSD {
		page.AmountUSD = amount.StringFixed(2)
	} else if rate := h.rates.CurrentRate(); rate.IsPositive() {
		page.AmountUSD = amount.DivRound(rate, 2).StringFixed(2)
	}

	renderPage(w, h.logger, http.StatusOK, "checkout", page)
}

// ProcessPayment accepts the checkout form (urlencoded or JSON). Browsers get
// a 303 to the invoice, JSON clients get the invoice URL in the body.
func (h *CheckoutHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	req, isJSON, err := decodeProcessPayment(r)
	if err != nil {
		h.respondCheckoutError(w, isJSON, err)
		return
	}

	amount, ok := req.Amount()
	if !ok {
		h.respondCheckoutError(w, isJSON, domain.NewValidationError("amount", "baseAmount or totalAmount is required"))
		return
	}

	out, err := h.orders.CreateOrder(r.Context(), &orderdto.CreateOrderInput{
		Amount:        amount,
		Currency:      req.Currency,
		CustomerName:  req.Name,
		CustomerEmail: req.Email,
		ProductName:   req.ProductName,
		Source:        orderdto.SourceCheckout,
	})
	if err != nil {
		h.respondCheckoutError(w, isJSON, err)
		return
	}

	if isJSON {
		writeJSON(w, http.StatusOK, checkoutRequest.ProcessPaymentResponse{
			OrderID:    out.Order.ID,
			InvoiceURL: out.InvoiceURL,
		})
		return
	}
	http.Redirect(w, r, out.InvoiceURL, http.StatusSeeOther)
}

// PayLink is the one-click quick-pay link: an ILS invoice for the default
// product, no customer details.
func (h *CheckoutHandler) PayLink(w http.ResponseWriter, r *http.Request) {
	amount, err := decimal.NewFromString(mux.Vars(r)["amount"])
	if err != nil {
		renderError(w, h.logger, http.StatusBadRequest, "Invalid amount", "The amount in the link is not a number.")
		return
	}

	out, err := h.orders.CreateOrder(r.Context(), &orderdto.CreateOrderInput{
		Amount:   amount,
		Currency: orderusecase.CurrencyILS,
		Source:   orderdto.SourcePayLink,
	})
	if err != nil {
		h.respondCheckoutError(w, false, err)
		return
	}

	http.Redirect(w, r, out.InvoiceURL, http.StatusFound)
}

func (h *CheckoutHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	orderID := strings.TrimSpace(r.URL.Query().Get("order_id"))
	if orderID == "" {
		renderError(w, h.logger, http.StatusBadRequest, "Missing order", "order_id is required.")
		return
	}

	order, err := h.orders.GetOrderByID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			renderError(w, h.logger, http.StatusNotFound, "Order not found", "We could not find order "+orderID+".")
			return
		}
		h.logger.Error("failed to load receipt", "order_id", orderID, "error", err)
		renderError(w, h.logger, http.StatusInternalServerError, "Something went wrong", "Please try again later.")
		return
	}

	renderPage(w, h.logger, http.StatusOK, "receipt", newOrderPage("Receipt", order))
}

func (h *CheckoutHandler) Success(w http.ResponseWriter, r *http.Request) {
	renderPage(w, h.logger, http.StatusOK, "success", successPage{
		Title:   "Payment Successful",
		OrderID: r.URL.Query().Get("order_id"),
	})
}

func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	renderPage(w, h.logger, http.StatusOK, "cancel", pageData{Title: "Payment Cancelled"})
}

func (h *CheckoutHandler) Terms(w http.ResponseWriter, r *http.Request) {
	renderPage(w, h.logger, http.StatusOK, "terms", pageData{Title: "Terms of Service"})
}

// PaymentIPN applies a signed payment status callback.
func (h *CheckoutHandler) PaymentIPN(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxIPNBodyBytes))
	if err != nil {
		writeError(w, h.logger, domain.NewValidationError("body", "unreadable payment notification"))
		return
	}

	update, err := h.payments.ParseIPN(body, r.Header.Get(paymentSignatureHeader))
	if err != nil {
		h.logger.Warn("rejected payment notification", "error", err)
		writeError(w, h.logger, err)
		return
	}

	if _, err := h.orders.ApplyPaymentUpdate(r.Context(), update); err != nil {
		h.logger.Error("failed to apply payment notification", "order_id", update.OrderID, "error", err)
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CheckoutHandler) respondCheckoutError(w http.ResponseWriter, isJSON bool, err error) {
	if isJSON {
		writeError(w, h.logger, err)
		return
	}

	if errors.Is(err, domain.ErrValidation) {
		renderError(w, h.logger, http.StatusBadRequest, "Invalid order", validationMessage(err))
		return
	}
	h.logger.Error("checkout failed", "error", err)
	renderError(w, h.logger, http.StatusInternalServerError, "Request Failed", "We could not create your payment. Please try again in a few minutes.")
}

func decodeProcessPayment(r *http.Request) (*checkoutRequest.ProcessPaymentRequest, bool, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req checkoutRequest.ProcessPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, true, domain.NewValidationError("body", "malformed JSON")
		}
		return &req, true, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, false, domain.NewValidationError("body", "malformed form")
	}
	req := &checkoutRequest.ProcessPaymentRequest{
		Currency:    r.PostForm.Get("currency"),
		Name:        r.PostForm.Get("name"),
		Email:       r.PostForm.Get("email"),
		ProductName: r.PostForm.Get("productName"),
	}
	for field, target := range map[string]*decimal.NullDecimal{
		"baseAmount":  &req.BaseAmount,
		"totalAmount": &req.TotalAmount,
	} {
		raw := strings.TrimSpace(r.PostForm.Get(field))
		if raw == "" {
			continue
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, false, domain.NewValidationError(field, "is not a number")
		}
		*target = decimal.NewNullDecimal(value)
	}
	return req, false, nil
}

func validationMessage(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		if verr.Field == "amount" && verr.Reason != "" {
			return strings.ToUpper(verr.Reason[:1]) + verr.Reason[1:] + "."
		}
		return verr.Field + " " + verr.Reason + "."
	}
	return err.Error()
}
