// Package metrics holds the Prometheus collectors for the dispatch loop and
// the document store.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes recorded for dispatched messages.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeUnhandled = "unhandled"
)

// Kinds recorded on the duration histogram.
const (
	KindRequest      = "request"
	KindNotification = "notification"
)

// Metrics is a set of collectors bound to one registry. A nil *Metrics
// records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	notifications *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	documents     prometheus.Gauge
	completions   *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		// requests counts calls by method and outcome
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lc3lsp_dispatch_requests_total",
			Help: "Total requests dispatched by method and outcome",
		}, []string{"method", "outcome"}),

		// notifications counts notifications by method and outcome
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lc3lsp_dispatch_notifications_total",
			Help: "Total notifications dispatched by method and outcome",
		}, []string{"method", "outcome"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lc3lsp_dispatch_duration_seconds",
			Help:    "Time spent handling a message in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12), // 50us to ~100ms
		}, []string{"kind"}),

		documents: factory.NewGauge(prometheus.GaugeOpts{
			Name: "lc3lsp_documents_open",
			Help: "Number of documents held in the store",
		}),

		completions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lc3lsp_completion_items_total",
			Help: "Completion items returned by completion context",
		}, []string{"context"}),
	}
}

// ObserveRequest records one handled call.
func (m *Metrics) ObserveRequest(method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.duration.WithLabelValues(KindRequest).Observe(elapsed.Seconds())
}

// ObserveNotification records one handled notification.
func (m *Metrics) ObserveNotification(method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(method, outcome).Inc()
	m.duration.WithLabelValues(KindNotification).Observe(elapsed.Seconds())
}

// SetDocuments sets the open document gauge.
func (m *Metrics) SetDocuments(n int) {
	if m == nil {
		return
	}
	m.documents.Set(float64(n))
}

// ObserveCompletion adds n items returned for the named context.
func (m *Metrics) ObserveCompletion(context string, n int) {
	if m == nil {
		return
	}
	m.completions.WithLabelValues(context).Add(float64(n))
}
