package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	httpErrorsTotal      *prometheus.CounterVec
	reviewsTotal         *prometheus.CounterVec
	pointsAwardedTotal   prometheus.Counter
	coachConnections     prometheus.Counter
	coachMessagesTotal   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecoquest_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ecoquest_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecoquest_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		reviewsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecoquest_reviews_total",
			Help: "Total number of submission reviews by outcome.",
		}, []string{"outcome"})

		pointsAwardedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ecoquest_points_awarded_total",
			Help: "Total points credited through the ledger.",
		})

		coachConnections = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ecoquest_coach_connections_total",
			Help: "Total websocket connections accepted by the coach.",
		})

		coachMessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecoquest_coach_messages_total",
			Help: "Total coach chat messages handled, by persona.",
		}, []string{"persona"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			reviewsTotal,
			pointsAwardedTotal,
			coachConnections,
			coachMessagesTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Reviews exposes the counter for submission review outcomes.
func Reviews() *prometheus.CounterVec {
	RegisterMetrics()
	return reviewsTotal
}

// PointsAwarded exposes the counter for credited points.
func PointsAwarded() prometheus.Counter {
	RegisterMetrics()
	return pointsAwardedTotal
}

// CoachConnections exposes the counter for accepted coach websocket connections.
func CoachConnections() prometheus.Counter {
	RegisterMetrics()
	return coachConnections
}

// CoachMessages exposes the counter for processed coach messages.
func CoachMessages() *prometheus.CounterVec {
	RegisterMetrics()
	return coachMessagesTotal
}
