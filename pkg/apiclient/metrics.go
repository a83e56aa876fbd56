package apiclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for backend calls.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Unauthorized    prometheus.Counter
}

// NewMetrics registers the client collectors on reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_api_requests_total",
			Help: "Backend API calls by operation and status class",
		}, []string{"op", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_api_request_duration_seconds",
			Help:    "Duration of backend API calls",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"op"}),
		Unauthorized: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_api_unauthorized_total",
			Help: "Responses that triggered the global sign-out",
		}),
	}
}

// observe records one call. status 0 means no response was received.
func (m *Metrics) observe(op string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(op, statusClass(status)).Inc()
	m.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if status == 401 {
		m.Unauthorized.Inc()
	}
}

func statusClass(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
