package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the operational counters for the order core.
type Metrics struct {
	ordersCreated        prometheus.Counter
	statusTransitions    *prometheus.CounterVec
	paymentVerifications *prometheus.CounterVec

	requestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the collectors against an explicit registry.
// Tests use it to avoid colliding on the process-global default.
func NewWithRegisterer(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ordercore_orders_created_total",
			Help: "Total number of orders created",
		}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ordercore_order_transitions_total",
			Help: "Total number of order status transitions applied",
		}, []string{"status"}),
		paymentVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ordercore_payment_verifications_total",
			Help: "Total number of payment signature verifications",
		}, []string{"result"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ordercore_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}

	registerer.MustRegister(m.ordersCreated, m.statusTransitions,
		m.paymentVerifications, m.requestDuration)

	return m
}

func (m *Metrics) OrderCreated() {
	m.ordersCreated.Inc()
}

func (m *Metrics) OrderTransition(status string) {
	m.statusTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) PaymentVerification(ok bool) {
	result := "rejected"
	if ok {
		result = "verified"
	}
	m.paymentVerifications.WithLabelValues(result).Inc()
}

// RequestTimer is a gin middleware observing per-route request durations.
func (m *Metrics) RequestTimer() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requestDuration.WithLabelValues(
			ctx.Request.Method,
			path,
			strconv.Itoa(ctx.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
