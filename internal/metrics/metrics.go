package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "procurement"

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	ordersCreated   *prometheus.CounterVec
	qcReports       *prometheus.CounterVec
	receiptsIssued  *prometheus.CounterVec
	numberRetries   *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchase_orders_created_total",
			Help:      "Purchase orders created by supplier type.",
		}, []string{"supplier_type"}),
		qcReports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "qc_reports_total",
			Help:      "QC reports written, by operation and resulting order status.",
		}, []string{"operation", "status"}),
		receiptsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipts_issued_total",
			Help:      "Receipts issued by type.",
		}, []string{"receipt_type"}),
		numberRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_number_retries_total",
			Help:      "Writes retried after a generated number collided with an existing one.",
		}, []string{"kind"}),
	}
	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.ordersCreated,
		m.qcReports,
		m.receiptsIssued,
		m.numberRetries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) PurchaseOrderCreated(supplierType string) {
	if m == nil {
		return
	}
	m.ordersCreated.WithLabelValues(supplierType).Inc()
}

// QCReportWritten counts a create or update and the order status it produced.
func (m *Metrics) QCReportWritten(operation, status string) {
	if m == nil {
		return
	}
	m.qcReports.WithLabelValues(operation, status).Inc()
}

func (m *Metrics) ReceiptIssued(receiptType string) {
	if m == nil {
		return
	}
	m.receiptsIssued.WithLabelValues(receiptType).Inc()
}

func (m *Metrics) NumberRetried(kind string) {
	if m == nil {
		return
	}
	m.numberRetries.WithLabelValues(kind).Inc()
}
