package handlers

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	adminRequest "github.com/LavaJover/wolf-checkout-service/internal/delivery/http/dto/admin/request"
	adminResponse "github.com/LavaJover/wolf-checkout-service/internal/delivery/http/dto/admin/response"
	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	"github.com/LavaJover/wolf-checkout-service/internal/usecase"
	orderdto "github.com/LavaJover/wolf-checkout-service/internal/usecase/dto/order"
	orderusecase "github.com/LavaJover/wolf-checkout-service/internal/usecase/order"
	"github.com/gorilla/mux"
	"go.openly.dev/pointy"
)

const (
	adminTokenHeader = "x-admin-token"
	adminTokenQuery  = "token"
)

type AdminHandler struct {
	orders         orderusecase.OrderUsecase
	uncreated      usecase.UncreatedOrderUsecase
	token          string
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewAdminHandler(
	orders orderusecase.OrderUsecase,
	uncreated usecase.UncreatedOrderUsecase,
	token string,
	maxUploadBytes int64,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		orders:         orders,
		uncreated:      uncreated,
		token:          token,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With("component", "admin_handler"),
	}
}

func (h *AdminHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/admin/login", h.Login).Methods(http.MethodPost)

	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(h.RequireToken)
	admin.HandleFunc("/orders", h.ListOrders).Methods(http.MethodGet)
	admin.HandleFunc("/update-status", h.UpdateStatus).Methods(http.MethodPost)
	admin.HandleFunc("/update-delivery", h.UpdateDelivery).Methods(http.MethodPost)
	admin.HandleFunc("/mark-delivered", h.MarkDelivered).Methods(http.MethodPost)
	admin.HandleFunc("/proof/{orderId}", h.ProofOfPayment).Methods(http.MethodGet)
	admin.HandleFunc("/pod/{orderId}", h.ProofOfDelivery).Methods(http.MethodGet)
	admin.HandleFunc("/uncreated-orders", h.UncreatedOrders).Methods(http.MethodGet)
}

// RequireToken rejects requests whose admin token is missing or wrong before
// any handler logic runs.
func (h *AdminHandler) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(adminTokenHeader)
		if token == "" {
			token = r.URL.Query().Get(adminTokenQuery)
		}
		if !h.validToken(token) {
			h.logger.Warn("admin request rejected", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			writeError(w, h.logger, domain.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *AdminHandler) validToken(token string) bool {
	if h.token == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) == 1
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req adminRequest.LoginRequest
	if err := decodeAdminBody(r, &req, func(form func(string) string) {
		req.Password = form("password")
	}); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if !h.validToken(req.Password) {
		writeJSON(w, http.StatusUnauthorized, adminResponse.LoginResponse{Success: false})
		return
	}
	writeJSON(w, http.StatusOK, adminResponse.LoginResponse{Success: true})
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	res := make([]*adminResponse.OrderResponse, len(orders))
	for i, order := range orders {
		res[i] = toOrderResponse(order)
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req adminRequest.UpdateStatusRequest
	if err := decodeAdminBody(r, &req, func(form func(string) string) {
		req.OrderID = form("orderId")
		req.Status = form("status")
	}); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.OrderID == "" {
		writeError(w, h.logger, domain.NewValidationError("orderId", "is required"))
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), req.OrderID, domain.OrderStatus(req.Status))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// UpdateDelivery takes a multipart form with orderId, txid and an optional
// image file. The image is stored inline as a data URL.
func (h *AdminHandler) UpdateDelivery(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(h.maxUploadBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		writeError(w, h.logger, domain.NewValidationError("body", "malformed or oversized form"))
		return
	}

	input := &orderdto.UpdateDeliveryInput{OrderID: strings.TrimSpace(r.FormValue("orderId"))}
	if input.OrderID == "" {
		writeError(w, h.logger, domain.NewValidationError("orderId", "is required"))
		return
	}
	if txid := strings.TrimSpace(r.FormValue("txid")); txid != "" {
		input.TxID = pointy.String(txid)
	}

	image, err := readProofImage(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if image != "" {
		input.DeliveryProofImage = pointy.String(image)
	}

	order, err := h.orders.UpdateDelivery(r.Context(), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *AdminHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	var req adminRequest.MarkDeliveredRequest
	if err := decodeAdminBody(r, &req, func(form func(string) string) {
		req.OrderID = form("orderId")
	}); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.OrderID == "" {
		writeError(w, h.logger, domain.NewValidationError("orderId", "is required"))
		return
	}

	result, err := h.orders.CompleteOrder(r.Context(), req.OrderID, domain.TriggerManual)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, adminResponse.MarkDeliveredResponse{
		Success:          result.Completed || result.AlreadyCompleted,
		AlreadyCompleted: result.AlreadyCompleted,
		FulfillmentID:    result.FulfillmentID,
		Order:            toOrderResponse(result.Order),
	})
}

func (h *AdminHandler) ProofOfPayment(w http.ResponseWriter, r *http.Request) {
	order, ok := h.loadOrderPage(w, r)
	if !ok {
		return
	}
	renderPage(w, h.logger, http.StatusOK, "proof", newOrderPage("Proof of Payment", order))
}

func (h *AdminHandler) ProofOfDelivery(w http.ResponseWriter, r *http.Request) {
	order, ok := h.loadOrderPage(w, r)
	if !ok {
		return
	}
	if order.Fulfillment == nil {
		renderError(w, h.logger, http.StatusNotFound, "Not delivered", fmt.Sprintf("Order %s has not been delivered yet.", order.ID))
		return
	}
	renderPage(w, h.logger, http.StatusOK, "pod", newOrderPage("Proof of Delivery", order))
}

func (h *AdminHandler) loadOrderPage(w http.ResponseWriter, r *http.Request) (*domain.Order, bool) {
	orderID := mux.Vars(r)["orderId"]
	order, err := h.orders.GetOrderByID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			renderError(w, h.logger, http.StatusNotFound, "Order not found", fmt.Sprintf("Order %s does not exist.", orderID))
			return nil, false
		}
		h.logger.Error("failed to load order", "order_id", orderID, "error", err)
		renderError(w, h.logger, http.StatusInternalServerError, "Something went wrong", "Please try again later.")
		return nil, false
	}
	return order, true
}

func (h *AdminHandler) UncreatedOrders(w http.ResponseWriter, r *http.Request) {
	filter, err := parseUncreatedFilter(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	logs, err := h.uncreated.GetUncreatedLogs(r.Context(), filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	res := make([]adminResponse.UncreatedOrderResponse, len(logs))
	for i, log := range logs {
		res[i] = adminResponse.UncreatedOrderResponse{
			ID:            log.ID,
			OrderID:       log.OrderID,
			Amount:        log.Amount.Value.StringFixed(2),
			Currency:      log.Amount.Currency,
			AmountUSD:     log.AmountUSD.StringFixed(2),
			CustomerName:  log.CustomerName,
			CustomerEmail: log.CustomerEmail,
			ProductName:   log.ProductName,
			ErrorMessage:  log.ErrorMessage,
			CreatedAt:     log.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func parseUncreatedFilter(r *http.Request) (*domain.UncreatedOrdersFilter, error) {
	query := r.URL.Query()
	filter := &domain.UncreatedOrdersFilter{}

	if email := strings.TrimSpace(query.Get("email")); email != "" {
		filter.CustomerEmail = pointy.String(email)
	}
	for name, target := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, domain.NewValidationError(name, "must be an RFC3339 timestamp")
		}
		*target = pointy.Pointer(t)
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return nil, domain.NewValidationError("limit", "must be a non-negative integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}

// decodeAdminBody fills dst from a JSON body, or calls fromForm with the
// parsed form values for any other content type.
func decodeAdminBody(r *http.Request, dst any, fromForm func(form func(string) string)) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return domain.NewValidationError("body", "malformed JSON")
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return domain.NewValidationError("body", "malformed form")
	}
	fromForm(func(key string) string {
		return strings.TrimSpace(r.FormValue(key))
	})
	return nil
}

func readProofImage(r *http.Request) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", domain.NewValidationError("image", "unreadable upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", domain.NewValidationError("image", "unreadable upload")
	}
	if len(data) == 0 {
		return "", nil
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", domain.NewValidationError("image", "must be an image")
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func toOrderResponse(order *domain.Order) *adminResponse.OrderResponse {
	if order == nil {
		return nil
	}
	res := &adminResponse.OrderResponse{
		ID:               order.ID,
		PaymentReference: order.PaymentReference,
		InvoiceURL:       order.InvoiceURL,
		Amount:           order.Amount.Value.StringFixed(2),
		Currency:         order.Amount.Currency,
		AmountUSD:        order.AmountUSD.StringFixed(2),
		CustomerName:     order.CustomerName,
		CustomerEmail:    order.CustomerEmail,
		ProductName:      order.ProductName,
		Status:           string(order.Status),
		PaymentStatus:    order.PaymentStatus,
		PaidAt:           order.PaidAt,
		TxID:             order.TxID,
		HasProofImage:    order.DeliveryProofImage != "",
		AuditLog:         make([]adminResponse.AuditEntryResponse, len(order.AuditLog)),
		CreatedAt:        order.CreatedAt,
	}
	if order.Fulfillment != nil {
		res.Fulfillment = &adminResponse.FulfillmentResponse{
			FulfillmentID: order.Fulfillment.FulfillmentID,
			DeliveryNode:  order.Fulfillment.DeliveryNode,
			ExecutionTime: order.Fulfillment.ExecutionTime,
		}
	}
	for i, entry := range order.AuditLog {
		res.AuditLog[i] = adminResponse.AuditEntryResponse{
			At:          entry.At,
			Actor:       entry.Actor,
			Description: entry.Description,
		}
	}
	return res
}
