package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kellaspace",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kellaspace",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 20},
	}, []string{"method", "path"})

	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kellaspace",
		Name:      "provider_requests_total",
		Help:      "Total requests to media providers by provider name and result status.",
	}, []string{"provider", "status"})

	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kellaspace",
		Name:      "provider_request_duration_seconds",
		Help:      "Media provider request duration in seconds.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"provider"})

	StoreOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kellaspace",
		Name:      "store_operations_total",
		Help:      "Total user store operations by operation name and result status.",
	}, []string{"operation", "status"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ProviderRequestsTotal,
		ProviderRequestDuration,
		StoreOperationsTotal,
	)
}

// StatusLabel maps an operation outcome onto the status label used by the
// counters above.
func StatusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
