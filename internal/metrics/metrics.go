package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	// HTTPRequestsTotal counts handled HTTP requests.
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maestro",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests, labeled by method, route and status.",
	}, []string{"method", "route", "status"})

	// HTTPRequestDurationSeconds is the time spent serving a request.
	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "maestro",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds, labeled by method and route.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 60, 120},
	}, []string{"method", "route"})

	// AgentInvocationsTotal counts agent invocations by capability and outcome.
	AgentInvocationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maestro",
		Subsystem: "agent",
		Name:      "invocations_total",
		Help:      "Total number of agent invocations, labeled by capability, provider and result.",
	}, []string{"capability", "provider", "result"})

	// AgentAttemptsTotal counts individual LLM attempts, including retries.
	AgentAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maestro",
		Subsystem: "agent",
		Name:      "attempts_total",
		Help:      "Total number of LLM attempts made by agents, including retries.",
	}, []string{"capability", "provider"})

	// AgentDurationSeconds is end-to-end time per invocation, retries included.
	AgentDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "maestro",
		Subsystem: "agent",
		Name:      "invocation_duration_seconds",
		Help:      "End-to-end agent invocation time including retries and backoff.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
	}, []string{"capability", "provider"})
)

// Register registers the service metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			AgentInvocationsTotal,
			AgentAttemptsTotal,
			AgentDurationSeconds,
		)
	})
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
