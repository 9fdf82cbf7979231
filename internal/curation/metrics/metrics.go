package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the curation pipeline.
type Metrics struct {
	// Runs started, by input type
	RunsStarted *prometheus.CounterVec

	// Runs finished, by terminal status
	RunsFinished *prometheus.CounterVec

	// Candidates screened, by final status
	CandidatesScreened *prometheus.CounterVec

	// End-to-end run duration
	RunDuration prometheus.Histogram
}

// New creates a Metrics instance with all curation pipeline metrics registered.
func New() *Metrics {
	return &Metrics{
		RunsStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxscreen_curation_runs_started_total",
			Help: "Total pipeline runs started, by input type",
		}, []string{"input_type"}),

		RunsFinished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxscreen_curation_runs_finished_total",
			Help: "Total pipeline runs finished, by terminal status",
		}, []string{"status"}),

		CandidatesScreened: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxscreen_curation_candidates_screened_total",
			Help: "Total candidates screened, by post-decision status",
		}, []string{"status"}),

		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vaxscreen_curation_run_duration_seconds",
			Help:    "End-to-end duration of pipeline runs",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
	}
}

// IncrementRunsStarted records a run start.
func (m *Metrics) IncrementRunsStarted(inputType string) {
	if m != nil {
		m.RunsStarted.WithLabelValues(inputType).Inc()
	}
}

// IncrementRunsFinished records a run reaching a terminal status.
func (m *Metrics) IncrementRunsFinished(status string) {
	if m != nil {
		m.RunsFinished.WithLabelValues(status).Inc()
	}
}

// IncrementCandidatesScreened records a screened candidate.
func (m *Metrics) IncrementCandidatesScreened(status string) {
	if m != nil {
		m.CandidatesScreened.WithLabelValues(status).Inc()
	}
}

// ObserveRunDuration records the duration of a completed run.
func (m *Metrics) ObserveRunDuration(d time.Duration) {
	if m != nil {
		m.RunDuration.Observe(d.Seconds())
	}
}
