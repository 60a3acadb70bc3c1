package usecase

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
)

func orderCreatedMessage(order *domain.Order) string {
	var b strings.Builder
	b.WriteString("<b>🆕 הזמנה נוצרה - WOLF GAMING</b>\n")
	fmt.Fprintf(&b, "מזהה: <code>%s</code>\n", html.EscapeString(order.ID))
	fmt.Fprintf(&b, "סכום: %s\n", formatMoney(order.Amount))
	fmt.Fprintf(&b, "מוצר: %s\n", html.EscapeString(order.ProductName))
	if order.CustomerEmail != "" {
		fmt.Fprintf(&b, "לקוח: %s (%s)\n", html.EscapeString(order.CustomerName), html.EscapeString(order.CustomerEmail))
	}
	b.WriteString("ממתין לתשלום ב-USDT.")
	return b.String()
}

func orderCompletedMessage(order *domain.Order, trigger domain.Trigger) string {
	var b strings.Builder
	b.WriteString("<b>✅ הזמנה נמסרה - WOLF GAMING</b>\n")
	fmt.Fprintf(&b, "מזהה: <code>%s</code>\n", html.EscapeString(order.ID))
	fmt.Fprintf(&b, "סכום: %s\n", formatMoney(order.Amount))
	fmt.Fprintf(&b, "שיטה: %s\n", trigger)
	if order.Fulfillment != nil {
		fmt.Fprintf(&b, "Fulfillment: <code>%s</code> (%s)", html.EscapeString(order.Fulfillment.FulfillmentID), html.EscapeString(order.Fulfillment.DeliveryNode))
	}
	return b.String()
}

func paymentReceivedMessage(order *domain.Order, update *domain.PaymentUpdate) string {
	return fmt.Sprintf("<b>💰 תשלום התקבל - WOLF GAMING</b>\nמזהה: <code>%s</code>\nסטטוס: %s\nשולם: %s %s",
		html.EscapeString(order.ID),
		html.EscapeString(update.PaymentStatus),
		html.EscapeString(update.ActuallyPaid),
		html.EscapeString(strings.ToUpper(update.PayCurrency)))
}

func formatMoney(m domain.Money) string {
	switch m.Currency {
	case CurrencyILS:
		return "₪" + m.Value.StringFixed(2)
	case CurrencyUSD:
		return "$" + m.Value.StringFixed(2)
	default:
		return m.Value.StringFixed(2) + " " + m.Currency
	}
}

var deliveryEmailTemplate = template.Must(template.New("delivery").Parse(`<div style="background:#050505;color:#fff;font-family:sans-serif;padding:32px;text-align:center">
  <div style="font-size:28px;font-weight:bold;color:#00f2ff">WOLF GAMING</div>
  <h2 style="color:#00ff88">Your credits have been delivered</h2>
  <p>Hi {{.CustomerName}}, your order <b>{{.OrderID}}</b> was fulfilled.</p>
  <table style="margin:0 auto;text-align:left;color:#ddd">
    <tr><td>Product</td><td>{{.ProductName}}</td></tr>
    <tr><td>Amount</td><td>{{.Amount}}</td></tr>
    <tr><td>Fulfillment ID</td><td>{{.FulfillmentID}}</td></tr>
    <tr><td>Delivery node</td><td>{{.DeliveryNode}}</td></tr>
    <tr><td>Executed at</td><td>{{.ExecutedAt}}</td></tr>
  </table>
  <p style="color:#888;font-size:12px">Keep this email as your proof of delivery.</p>
</div>`))

type deliveryEmailData struct {
	CustomerName  string
	OrderID       string
	ProductName   string
	Amount        string
	FulfillmentID string
	DeliveryNode  string
	ExecutedAt    string
}

func deliveryEmail(order *domain.Order, info domain.FulfillmentInfo) (domain.Email, error) {
	var body bytes.Buffer
	if err := deliveryEmailTemplate.Execute(&body, deliveryEmailData{
		CustomerName:  order.CustomerName,
		OrderID:       order.ID,
		ProductName:   order.ProductName,
		Amount:        formatMoney(order.Amount),
		FulfillmentID: info.FulfillmentID,
		DeliveryNode:  info.DeliveryNode,
		ExecutedAt:    info.ExecutionTime.UTC().Format("2006-01-02 15:04 MST"),
	}); err != nil {
		return domain.Email{}, fmt.Errorf("render delivery email: %w", err)
	}

	return domain.Email{
		To:       order.CustomerEmail,
		Subject:  fmt.Sprintf("WOLF GAMING - Order %s delivered", order.ID),
		HTMLBody: body.String(),
	}, nil
}
