package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the decision module.
type Metrics struct {
	// Decision outcomes by verdict and source (advisor or fallback)
	DecisionOutcome *prometheus.CounterVec

	// Fallback activations by advisor failure category
	FallbackTotal *prometheus.CounterVec

	// Advisor call latency
	AdvisorLatency prometheus.Histogram
}

// New creates a Metrics instance with all decision module metrics registered.
func New() *Metrics {
	return &Metrics{
		DecisionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxscreen_decision_outcomes_total",
			Help: "Total decision outcomes by verdict and verdict source",
		}, []string{"verdict", "source"}), // source: "advisor", "fallback"

		FallbackTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxscreen_decision_fallbacks_total",
			Help: "Total fallback decisions by advisor failure category",
		}, []string{"category"}),

		AdvisorLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vaxscreen_decision_advisor_duration_seconds",
			Help:    "Duration of advisory service calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// IncrementOutcome records a decision outcome.
func (m *Metrics) IncrementOutcome(verdict, source string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(verdict, source).Inc()
	}
}

// IncrementFallback records a fallback activation.
func (m *Metrics) IncrementFallback(category string) {
	if m != nil {
		m.FallbackTotal.WithLabelValues(category).Inc()
	}
}

// ObserveAdvisorLatency records the duration of an advisory call.
func (m *Metrics) ObserveAdvisorLatency(d time.Duration) {
	if m != nil {
		m.AdvisorLatency.Observe(d.Seconds())
	}
}
