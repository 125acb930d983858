// Package metrics provides Prometheus metrics for the poppy services.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ramsey-B/poppy/pkg/models"
)

var (
	// SQLClassificationsTotal tracks executed statements by classification
	SQLClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poppy",
			Subsystem: "sql",
			Name:      "classifications_total",
			Help:      "Total number of statements by classification",
		},
		[]string{"classification"},
	)

	// SQLQueryDuration tracks how long the store takes to answer a statement
	SQLQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "poppy",
			Subsystem: "sql",
			Name:      "query_duration_seconds",
			Help:      "Duration of read-only statements in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	// SearchesTotal tracks text-to-SQL searches by outcome
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poppy",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total number of natural language searches by outcome",
		},
		[]string{"classification"},
	)

	// LLMRequestsTotal tracks outbound calls to the model server
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poppy",
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "Total number of requests to the model server",
		},
		[]string{"endpoint", "status_code"},
	)

	// LLMRequestDuration tracks outbound call duration
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "poppy",
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "Duration of requests to the model server in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"endpoint"},
	)

	// UpsertsTotal tracks catalog lines by outcome
	UpsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poppy",
			Subsystem: "catalog",
			Name:      "upserts_total",
			Help:      "Total number of catalog lines by outcome",
		},
		[]string{"status"},
	)
)

func RecordClassification(classification models.Classification) {
	SQLClassificationsTotal.WithLabelValues(string(classification)).Inc()
}

func RecordQueryDuration(d time.Duration) {
	SQLQueryDuration.Observe(d.Seconds())
}

func RecordSearch(classification models.Classification) {
	SearchesTotal.WithLabelValues(string(classification)).Inc()
}

// RecordLLMRequest records a model server call. statusCode 0 means no response.
func RecordLLMRequest(endpoint string, statusCode int, d time.Duration) {
	LLMRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	LLMRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func RecordUpsert(status string) {
	UpsertsTotal.WithLabelValues(status).Inc()
}

// RegisterRoutes exposes the default registry at /metrics.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
