// Package metrics provides Prometheus metrics for the storefront.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/thomas/knits-terminal-go/internal/cart"
	"github.com/thomas/knits-terminal-go/internal/checkout"
)

var (
	// HTTPRequestDuration tracks catalog API request duration by method, path, and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "knits_http_request_duration_seconds",
			Help:    "Catalog API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestTotal tracks catalog API requests by method, path, and status code.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "knits_http_requests_total",
			Help: "Total number of catalog API requests",
		},
		[]string{"method", "path", "status_code"},
	)

	// CartMutationsTotal counts effective cart changes by operation.
	CartMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "knits_cart_mutations_total",
			Help: "Total number of cart mutations",
		},
		[]string{"op"},
	)

	// OrdersPlacedTotal counts simulated orders.
	OrdersPlacedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "knits_orders_placed_total",
			Help: "Total number of orders placed",
		},
	)

	// OrderValue tracks grand totals of placed orders.
	OrderValue = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "knits_order_value_dollars",
			Help:    "Grand total of placed orders",
			Buckets: []float64{25, 50, 100, 150, 250, 500, 1000},
		},
	)

	// CheckoutRejectionsTotal counts refused checkout submissions by reason.
	CheckoutRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "knits_checkout_rejections_total",
			Help: "Total number of rejected checkout submissions",
		},
		[]string{"reason"},
	)

	// CacheOperationsTotal tracks catalog cache operations.
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "knits_cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "result"},
	)

	// ActiveSessions tracks connected SSH sessions.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "knits_active_sessions",
			Help: "Number of active storefront sessions",
		},
	)
)

// PrometheusMiddleware returns a Gin middleware that collects HTTP metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration)
		HTTPRequestTotal.WithLabelValues(method, path, statusCode).Inc()
	}
}

// RecordCacheOperation records a cache operation. It matches the cache
// observer signature.
func RecordCacheOperation(operation, result string) {
	CacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

// RecordCartEvent counts a cart mutation. Pass it to cart.Store.Subscribe.
func RecordCartEvent(e cart.Event) {
	CartMutationsTotal.WithLabelValues(string(e.Op)).Inc()
}

// RecordOrder records a placed order.
func RecordOrder(r checkout.Receipt) {
	OrdersPlacedTotal.Inc()
	OrderValue.Observe(r.Totals.GrandTotal.InexactFloat64())
}

// RecordCheckoutRejection counts a refused checkout by reason.
func RecordCheckoutRejection(err error) {
	CheckoutRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, checkout.ErrIncompleteForm):
		return "incomplete_form"
	case errors.Is(err, checkout.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, checkout.ErrAlreadyPlaced):
		return "already_placed"
	default:
		return "other"
	}
}

// SessionStarted increments the active session gauge and returns a func
// that decrements it.
func SessionStarted() func() {
	ActiveSessions.Inc()
	return ActiveSessions.Dec
}
