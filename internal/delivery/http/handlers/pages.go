package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type pageData struct {
	Title   string
	Message string
}

type checkoutPage struct {
	Title       string
	ProductName string
	Amount      string
	RawAmount   string
	Currency    string
	AmountUSD   string
}

type successPage struct {
	Title   string
	OrderID string
}

type orderPage struct {
	Title       string
	Order       *domain.Order
	Amount      string
	AmountUSD   string
	CreatedAt   string
	ExecutedAt  string
	GeneratedAt string
	ProofImage  template.URL
}

func newOrderPage(title string, order *domain.Order) orderPage {
	page := orderPage{
		Title:       title,
		Order:       order,
		Amount:      formatAmount(order.Amount),
		AmountUSD:   order.AmountUSD.StringFixed(2),
		CreatedAt:   formatTime(order.CreatedAt),
		GeneratedAt: formatTime(time.Now()),
	}
	if order.Fulfillment != nil {
		page.ExecutedAt = formatTime(order.Fulfillment.ExecutionTime)
	}
	// Only inline images are rendered.
	if strings.HasPrefix(order.DeliveryProofImage, "data:image/") {
		page.ProofImage = template.URL(order.DeliveryProofImage)
	}
	return page
}

func formatAmount(m domain.Money) string {
	switch m.Currency {
	case "ILS":
		return "₪" + m.Value.StringFixed(2)
	case "USD":
		return "$" + m.Value.StringFixed(2)
	}
	return m.Value.StringFixed(2) + " " + m.Currency
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// renderPage buffers the page so a template error surfaces as a 500.
func renderPage(w http.ResponseWriter, logger *slog.Logger, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Error("failed to render page", "page", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func renderError(w http.ResponseWriter, logger *slog.Logger, status int, title, message string) {
	renderPage(w, logger, status, "error", pageData{Title: title, Message: message})
}
