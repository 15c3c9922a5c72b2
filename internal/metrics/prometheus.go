package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tentacles/pkg/errors"
)

var (
	// Exchange metrics
	ExchangeAPICalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tentacles_exchange_api_calls_total",
			Help: "Total number of exchange API calls",
		},
		[]string{"exchange", "endpoint", "status"}, // status: success|error
	)

	ExchangeAPIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tentacles_exchange_api_errors_total",
			Help: "Total number of exchange API errors",
		},
		[]string{"exchange", "error_type"}, // error_type: exchange|rate_limited|transport|decode
	)

	ExchangeAPILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tentacles_exchange_api_latency_seconds",
			Help:    "Exchange API latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"exchange", "endpoint"},
	)

	// Adapter metrics
	AdapterFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tentacles_adapter_fallbacks_total",
			Help: "Calls repeated with an alternate parameter set",
		},
		[]string{"exchange", "operation"},
	)

	DegradedPositions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tentacles_adapter_degraded_positions_total",
			Help: "Positions returned unparsed because a required key was missing",
		},
		[]string{"exchange"},
	)

	ReconciliationMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tentacles_adapter_quantity_reconciliation_misses_total",
			Help: "Market buy orders whose original base quantity could not be recovered",
		},
		[]string{"exchange"},
	)

	SuppressedErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tentacles_adapter_suppressed_errors_total",
			Help: "Known benign exchange errors swallowed by the adapter",
		},
		[]string{"exchange", "reason"},
	)

	// Messaging metrics
	KafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tentacles_kafka_messages_total",
			Help: "Total Kafka messages produced",
		},
		[]string{"topic", "status"},
	)

	// Web interface metrics
	CommunityPageViews = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tentacles_community_page_views_total",
			Help: "Community page requests by outcome",
		},
		[]string{"outcome"}, // outcome: rendered|preview|redirect
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(ExchangeAPICalls)
	prometheus.MustRegister(ExchangeAPIErrors)
	prometheus.MustRegister(ExchangeAPILatency)

	prometheus.MustRegister(AdapterFallbacks)
	prometheus.MustRegister(DegradedPositions)
	prometheus.MustRegister(ReconciliationMisses)
	prometheus.MustRegister(SuppressedErrors)

	prometheus.MustRegister(KafkaMessages)
	prometheus.MustRegister(CommunityPageViews)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordExchangeAPICall records an exchange API call
func RecordExchangeAPICall(exchange, endpoint string, latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	ExchangeAPICalls.WithLabelValues(exchange, endpoint, status).Inc()
	ExchangeAPILatency.WithLabelValues(exchange, endpoint).Observe(latency.Seconds())

	if err != nil {
		ExchangeAPIErrors.WithLabelValues(exchange, classify(err)).Inc()
	}
}

// ErrorClassifier lets transport errors name their metric label.
type ErrorClassifier interface {
	ErrorType() string
}

func classify(err error) string {
	var c ErrorClassifier
	if errors.As(err, &c) {
		return c.ErrorType()
	}
	return "unknown"
}

// RecordFallback records a call repeated with an alternate parameter
func RecordFallback(exchange, operation string) {
	AdapterFallbacks.WithLabelValues(exchange, operation).Inc()
}

// RecordDegradedPosition records a position returned unparsed
func RecordDegradedPosition(exchange string) {
	DegradedPositions.WithLabelValues(exchange).Inc()
}

// RecordReconciliationMiss records an unresolved market buy quantity
func RecordReconciliationMiss(exchange string) {
	ReconciliationMisses.WithLabelValues(exchange).Inc()
}

// RecordSuppressedError records a benign exchange error that was ignored
func RecordSuppressedError(exchange, reason string) {
	SuppressedErrors.WithLabelValues(exchange, reason).Inc()
}

// RecordKafkaMessage records a produced Kafka message
func RecordKafkaMessage(topic string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	KafkaMessages.WithLabelValues(topic, status).Inc()
}

// RecordCommunityPageView records the outcome of a community page request
func RecordCommunityPageView(outcome string) {
	CommunityPageViews.WithLabelValues(outcome).Inc()
}
