package metrics

import (
	"strconv"
	"time"

	"consent-manager/core/consent"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the consent engine.
// It watches managers and counts updates, saves and apply passes.
type Metrics struct {
	ConsentUpdates  prometheus.Counter
	Saves           *prometheus.CounterVec
	SavedDecisions  *prometheus.CounterVec
	Applies         prometheus.Counter
	ServicesChanged prometheus.Counter
	RenderDuration  prometheus.Histogram
}

// New creates a Metrics instance registered with reg. A nil registerer uses
// the default prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ConsentUpdates: factory.NewCounter(prometheus.CounterOpts{
			Name: "consent_updates_total",
			Help: "Total number of consent mapping updates",
		}),
		Saves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "consent_saves_total",
			Help: "Total number of consent saves by event type",
		}, []string{"type"}),
		SavedDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "consent_saved_decisions_total",
			Help: "Changed consents per service and value at save time",
		}, []string{"service", "consent"}),
		Applies: factory.NewCounter(prometheus.CounterOpts{
			Name: "consent_applies_total",
			Help: "Total number of apply passes",
		}),
		ServicesChanged: factory.NewCounter(prometheus.CounterOpts{
			Name: "consent_services_changed_total",
			Help: "Total number of service activation changes across apply passes",
		}),
		RenderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "consent_render_duration_seconds",
			Help:    "Duration of document render requests",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// Update implements consent.Watcher.
func (m *Metrics) Update(_ *consent.Manager, kind consent.EventKind, data any) {
	switch kind {
	case consent.EventConsents:
		m.ConsentUpdates.Inc()
	case consent.EventSave:
		event, ok := data.(consent.SaveEvent)
		if !ok {
			return
		}
		m.Saves.WithLabelValues(event.Type).Inc()
		for service, value := range event.Changes {
			m.SavedDecisions.WithLabelValues(service, strconv.FormatBool(value)).Inc()
		}
	case consent.EventApply:
		event, ok := data.(consent.ApplyEvent)
		if !ok {
			return
		}
		m.Applies.Inc()
		m.ServicesChanged.Add(float64(event.Changed))
	}
}

// ObserveRender records the duration of a render request.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRender(start time.Time) {
	m.RenderDuration.Observe(time.Since(start).Seconds())
}
