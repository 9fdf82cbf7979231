// Package decision implements decision fusion: screening results plus an
// external advisory opinion become one normalized decision record, with a
// deterministic rule-based fallback whenever the advisor cannot be used.
package decision

import (
	"context"
	"log/slog"
	"time"

	"vaxscreen/internal/advisor"
	"vaxscreen/internal/candidate"
	"vaxscreen/internal/decision/metrics"
	"vaxscreen/internal/decision/ports"
)

const (
	sourceAdvisor  = "advisor"
	sourceFallback = "fallback"
)

// Service is the decision fusion engine. It never returns an error to its
// caller: any advisor fault resolves to the fallback decision.
type Service struct {
	advisor ports.Advisor
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics attaches decision metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService builds the fusion engine. A nil advisor means the advisory
// service is explicitly absent; every decision then takes the fallback path.
func NewService(adv ports.Advisor, opts ...Option) *Service {
	s := &Service{advisor: adv}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Decide produces the decision record for one screened candidate summary.
func (s *Service) Decide(ctx context.Context, summary ports.Summary) candidate.Decision {
	if s.advisor == nil {
		return s.fallback(ctx, summary, advisor.ErrNotConfigured)
	}

	start := time.Now()
	advice, err := s.advisor.Advise(ctx, summary)
	s.metrics.ObserveAdvisorLatency(time.Since(start))
	if err != nil {
		return s.fallback(ctx, summary, err)
	}

	record, err := fromAdvice(advice)
	if err != nil {
		return s.fallback(ctx, summary, err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "advisor decision",
			"protein_id", summary.ProteinID,
			"verdict", record.Verdict,
			"confidence", record.Confidence,
		)
	}
	s.metrics.IncrementOutcome(string(record.Verdict), sourceAdvisor)
	return record
}

// fromAdvice normalizes a raw advisor reply into a decision record. An
// unrecognized verdict is rejected here, before it can reach the state
// applier, so the engine falls back instead of applying garbage.
func fromAdvice(advice *ports.Advice) (candidate.Decision, error) {
	verdict, err := candidate.ParseVerdict(advice.Verdict)
	if err != nil {
		return candidate.Decision{}, advisor.NewError(advisor.ErrorBadData, "unusable verdict", err)
	}

	// An absent or unrecognized confidence label is legal; the applier
	// defaults it per verdict.
	confidence, _ := candidate.ParseConfidenceTier(advice.Confidence)

	return candidate.Decision{
		Stage:      candidate.StageAntigenScreening,
		Verdict:    verdict,
		Reasoning:  advice.Reasoning,
		Confidence: confidence,
		Flags:      advice.Flags,
		CreatedAt:  time.Now(),
	}, nil
}

func (s *Service) fallback(ctx context.Context, summary ports.Summary, cause error) candidate.Decision {
	category := advisor.CategoryOf(cause)
	if s.logger != nil {
		s.logger.WarnContext(ctx, "advisor unavailable, using fallback decision",
			"protein_id", summary.ProteinID,
			"category", category,
			"error", cause,
		)
	}
	record := FallbackDecision(summary)
	record.CreatedAt = time.Now()

	s.metrics.IncrementFallback(string(category))
	s.metrics.IncrementOutcome(string(record.Verdict), sourceFallback)
	return record
}
