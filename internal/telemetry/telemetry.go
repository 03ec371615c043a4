// Package telemetry exposes prometheus instrumentation for the research loop.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's prometheus collectors. A nil *Metrics is a
// valid no-op receiver so components can run uninstrumented in tests.
type Metrics struct {
	turnsTotal     *prometheus.CounterVec
	roundsTotal    prometheus.Counter
	searchesTotal  *prometheus.CounterVec
	eventsTotal    *prometheus.CounterVec
	forcedFinal    prometheus.Counter
	turnDuration   prometheus.Histogram
	imagesGathered prometheus.Counter
}

// New registers the collectors against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		turnsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scout_turns_total",
			Help: "Research turns by terminal outcome.",
		}, []string{"outcome"}),
		roundsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "scout_rounds_total",
			Help: "Research rounds executed.",
		}),
		searchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scout_searches_total",
			Help: "Search queries by outcome.",
		}, []string{"status"}),
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scout_events_emitted_total",
			Help: "Progress events emitted by type.",
		}, []string{"type"}),
		forcedFinal: factory.NewCounter(prometheus.CounterOpts{
			Name: "scout_forced_finalizations_total",
			Help: "Turns finalized by budget exhaustion while the reflector still judged the context insufficient.",
		}),
		turnDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scout_turn_duration_seconds",
			Help:    "Wall time of a research turn.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		imagesGathered: factory.NewCounter(prometheus.CounterOpts{
			Name: "scout_images_gathered_total",
			Help: "Deduplicated images merged into research context.",
		}),
	}
}

// TurnFinished records a turn's terminal outcome and duration.
func (m *Metrics) TurnFinished(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(outcome).Inc()
	m.turnDuration.Observe(seconds)
}

// RoundExecuted records one completed research round with its query outcomes.
func (m *Metrics) RoundExecuted(succeeded, failed int) {
	if m == nil {
		return
	}
	m.roundsTotal.Inc()
	m.searchesTotal.WithLabelValues("ok").Add(float64(succeeded))
	m.searchesTotal.WithLabelValues("failed").Add(float64(failed))
}

// EventEmitted records one progress event.
func (m *Metrics) EventEmitted(eventType string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(eventType).Inc()
}

// ForcedFinalization records a budget-exhausted finalization.
func (m *Metrics) ForcedFinalization() {
	if m == nil {
		return
	}
	m.forcedFinal.Inc()
}

// ImagesGathered records newly merged images.
func (m *Metrics) ImagesGathered(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.imagesGathered.Add(float64(n))
}
