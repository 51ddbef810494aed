// Package metrics provides Prometheus metrics for the doctor portal.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	BillsCreated         prometheus.Counter
	BillNumberCollisions prometheus.Counter
	PaymentsRecorded     prometheus.Counter
	FormsSaved           *prometheus.CounterVec
	FormSaveFailures     *prometheus.CounterVec
	RenderDuration       *prometheus.HistogramVec
	EventsPublished      *prometheus.CounterVec
	CircuitBreakerState  *prometheus.GaugeVec

	registry *prometheus.Registry
}

// New creates the metrics and registers them on a private registry, so that
// several instances can coexist in tests.
func New() *Metrics {
	m := &Metrics{
		BillsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bills_created_total",
			Help: "Total outpatient bills created",
		}),
		BillNumberCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bill_number_collisions_total",
			Help: "Generated bill numbers that were already taken",
		}),
		PaymentsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bill_payments_recorded_total",
			Help: "Total payments recorded against bills",
		}),
		FormsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medical_forms_saved_total",
			Help: "Total medical forms saved",
		}, []string{"kind"}),
		FormSaveFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medical_form_save_failures_total",
			Help: "Medical form saves aborted, by stage",
		}, []string{"stage"}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "form_render_duration_seconds",
			Help:    "Form render duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"kind", "surface"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Domain events published, by type and outcome",
		}, []string{"type", "outcome"}),
		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		}, []string{"name"}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.BillsCreated,
		m.BillNumberCollisions,
		m.PaymentsRecorded,
		m.FormsSaved,
		m.FormSaveFailures,
		m.RenderDuration,
		m.EventsPublished,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
