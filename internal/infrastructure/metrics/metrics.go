package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OrderMetrics holds every checkout and fulfillment metric.
type OrderMetrics struct {
	// Created orders
	OrdersCreatedTotal       *prometheus.CounterVec
	OrdersCreatedAmountTotal *prometheus.CounterVec
	OpenOrders               prometheus.Gauge

	// Orders that never got an invoice
	OrdersRejectedTotal *prometheus.CounterVec

	// Completed orders
	OrdersCompletedTotal       *prometheus.CounterVec
	OrdersCompletedAmountTotal *prometheus.CounterVec
	CompletionSkippedTotal     *prometheus.CounterVec
	OrderFulfillmentDuration   *prometheus.HistogramVec

	// Status overrides from the admin surface
	StatusChangesTotal *prometheus.CounterVec

	// Timers
	PendingTimers prometheus.Gauge

	// Collaborators
	NotificationFailuresTotal *prometheus.CounterVec
	RateRefreshTotal          *prometheus.CounterVec
	CurrentRate               *prometheus.GaugeVec
	InvoiceRequestDuration    *prometheus.HistogramVec

	// Errors
	OrderErrorsTotal *prometheus.CounterVec
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	factory := promauto.With(reg)

	return &OrderMetrics{
		OrdersCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_orders_created_total",
				Help: "Total number of created orders",
			},
			[]string{"currency", "status"},
		),

		OrdersCreatedAmountTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_orders_created_amount_total",
				Help: "Total amount of created orders in the order currency",
			},
			[]string{"currency"},
		),

		OpenOrders: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "checkout_open_orders",
				Help: "Orders created or re-armed by this process and not yet completed",
			},
		),

		OrdersRejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_orders_rejected_total",
				Help: "Checkout attempts rejected before an order was persisted",
			},
			[]string{"reason"},
		),

		OrdersCompletedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_orders_completed_total",
				Help: "Total number of completed orders",
			},
			[]string{"trigger", "currency"},
		),

		OrdersCompletedAmountTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_orders_completed_amount_total",
				Help: "Total amount of completed orders in the order currency",
			},
			[]string{"currency"},
		),

		CompletionSkippedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_completion_skipped_total",
				Help: "Completion calls that did not transition the order",
			},
			[]string{"trigger", "reason"},
		),

		OrderFulfillmentDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "checkout_order_fulfillment_duration_seconds",
				Help:    "Time from order creation to completion in seconds",
				Buckets: prometheus.ExponentialBuckets(30, 2, 10), // 30s, 1m, 2m, 4m...
			},
			[]string{"trigger"},
		),

		StatusChangesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_status_changes_total",
				Help: "Admin status overrides by target status",
			},
			[]string{"status"},
		),

		PendingTimers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "checkout_pending_fulfillment_timers",
				Help: "Armed automatic completion timers",
			},
		),

		NotificationFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_notification_failures_total",
				Help: "Failed notification dispatches by channel",
			},
			[]string{"channel"},
		),

		RateRefreshTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_rate_refresh_total",
				Help: "Exchange rate refresh attempts by provider and result",
			},
			[]string{"provider", "result"},
		),

		CurrentRate: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "checkout_exchange_rate",
				Help: "Exchange rate currently used for conversion",
			},
			[]string{"pair"},
		),

		InvoiceRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "checkout_invoice_request_duration_seconds",
				Help:    "Invoice issuance latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 9), // 50ms, 100ms, 200ms...
			},
			[]string{"result"},
		),

		OrderErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_order_errors_total",
				Help: "Errors while creating or processing orders",
			},
			[]string{"operation", "error_type"},
		),
	}
}

// RecordOrderCreated records a persisted order.
func (m *OrderMetrics) RecordOrderCreated(currency, status string, amount float64) {
	m.OrdersCreatedTotal.WithLabelValues(currency, status).Inc()
	m.OrdersCreatedAmountTotal.WithLabelValues(currency).Add(amount)
	m.OpenOrders.Inc()
}

// RecordOrderRejected records a checkout attempt that produced no order.
func (m *OrderMetrics) RecordOrderRejected(reason string) {
	m.OrdersRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordOrderCompleted records a successful completion.
func (m *OrderMetrics) RecordOrderCompleted(trigger, currency string, amount, sinceCreationSeconds float64) {
	m.OrdersCompletedTotal.WithLabelValues(trigger, currency).Inc()
	m.OrdersCompletedAmountTotal.WithLabelValues(currency).Add(amount)
	m.OrderFulfillmentDuration.WithLabelValues(trigger).Observe(sinceCreationSeconds)
	m.OpenOrders.Dec()
}

// RecordCompletionSkipped records a completion call that was a no-op.
func (m *OrderMetrics) RecordCompletionSkipped(trigger, reason string) {
	m.CompletionSkippedTotal.WithLabelValues(trigger, reason).Inc()
}

func (m *OrderMetrics) RecordStatusChange(status string) {
	m.StatusChangesTotal.WithLabelValues(status).Inc()
}

func (m *OrderMetrics) RecordOpenOrdersRestored(count int) {
	m.OpenOrders.Add(float64(count))
}

// SetPendingTimers exposes the scheduler's armed timer count.
func (m *OrderMetrics) SetPendingTimers(count int) {
	m.PendingTimers.Set(float64(count))
}

func (m *OrderMetrics) RecordNotificationFailure(channel string) {
	m.NotificationFailuresTotal.WithLabelValues(channel).Inc()
}

// RecordRateRefresh records a refresh attempt and, on success, the new rate.
func (m *OrderMetrics) RecordRateRefresh(provider, pair string, rate float64, err error) {
	if err != nil {
		m.RateRefreshTotal.WithLabelValues(provider, "error").Inc()
		return
	}
	m.RateRefreshTotal.WithLabelValues(provider, "ok").Inc()
	m.CurrentRate.WithLabelValues(pair).Set(rate)
}

func (m *OrderMetrics) RecordInvoiceRequest(durationSeconds float64, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.InvoiceRequestDuration.WithLabelValues(result).Observe(durationSeconds)
}

// RecordError records an error by operation and type.
func (m *OrderMetrics) RecordError(operation, errorType string) {
	m.OrderErrorsTotal.WithLabelValues(operation, errorType).Inc()
}
