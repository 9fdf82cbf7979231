// Package curation runs the screening pipeline end to end: resolve protein
// records for a run, screen each candidate, fuse a decision, apply it, and
// persist the results.
package curation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vaxscreen/internal/candidate"
	"vaxscreen/internal/curation/metrics"
	"vaxscreen/internal/decision"
	"vaxscreen/internal/decision/ports"
	"vaxscreen/internal/sequence"
	id "vaxscreen/pkg/domain"
	dErrors "vaxscreen/pkg/domain-errors"
	pstrings "vaxscreen/pkg/platform/strings"
)

// SequenceSource resolves a run's raw input into protein records. An empty
// result is a valid, non-error outcome.
type SequenceSource interface {
	Resolve(ctx context.Context, inputType candidate.InputType, raw string, max int) ([]sequence.ProteinRecord, error)
}

// Screener attaches screening results to a candidate. It never fails; analyzer
// faults surface as a flag on the candidate.
type Screener interface {
	Screen(ctx context.Context, c *candidate.Candidate)
}

// Decider produces a decision record from a screening summary. It never fails;
// advisor faults resolve to the fallback path internally.
type Decider interface {
	Decide(ctx context.Context, summary ports.Summary) candidate.Decision
}

// Store is the persistence surface the pipeline depends on. Candidate saves
// are non-fatal to the batch.
type Store interface {
	CreateRun(ctx context.Context, run *candidate.PipelineRun) error
	UpdateRun(ctx context.Context, run *candidate.PipelineRun) error
	GetRun(ctx context.Context, runID id.RunID) (*candidate.PipelineRun, error)
	SaveCandidate(ctx context.Context, runID id.RunID, c *candidate.Candidate) error
	ListCandidates(ctx context.Context, runID id.RunID) ([]*candidate.Candidate, error)
}

// Service orchestrates pipeline runs. Collaborators are injected explicitly;
// there are no lazily constructed clients.
type Service struct {
	source   SequenceSource
	screener Screener
	decider  Decider
	store    Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithLogger sets the logger used by the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics recorder used by the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService constructs the pipeline orchestrator.
func NewService(source SequenceSource, screener Screener, decider Decider, store Store, opts ...Option) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("sequence source is required")
	}
	if screener == nil {
		return nil, fmt.Errorf("screener is required")
	}
	if decider == nil {
		return nil, fmt.Errorf("decider is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	s := &Service{
		source:   source,
		screener: screener,
		decider:  decider,
		store:    store,
		logger:   slog.Default(),
		tracer:   otel.Tracer("vaxscreen/curation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RunParams describes a requested pipeline run. Zero values fall back to the
// run defaults (global population, 0.70 coverage, 20 candidates).
type RunParams struct {
	PathogenName      string
	InputType         string
	RawInput          string
	TargetPopulations []string
	CoverageThreshold float64
	MaxCandidates     int
}

// StartRun validates the request, persists the new run, and executes the
// pipeline in the background. The returned run reflects the initial state.
func (s *Service) StartRun(ctx context.Context, p RunParams) (*candidate.PipelineRun, error) {
	if p.PathogenName == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "pathogen_name must not be empty")
	}
	if p.RawInput == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "raw_input must not be empty")
	}
	inputType, err := candidate.ParseInputType(p.InputType)
	if err != nil {
		return nil, err
	}
	if p.CoverageThreshold < 0 || p.CoverageThreshold > 1 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "coverage_threshold must be in [0, 1]")
	}

	run := candidate.NewRun(p.PathogenName, inputType, p.RawInput)
	if populations := pstrings.DedupeAndTrim(p.TargetPopulations); len(populations) > 0 {
		run.TargetPopulations = populations
	}
	if p.CoverageThreshold > 0 {
		run.CoverageThreshold = p.CoverageThreshold
	}
	if p.MaxCandidates > 0 {
		run.MaxCandidates = p.MaxCandidates
	}

	if err := s.store.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	s.metrics.IncrementRunsStarted(string(run.InputType))
	s.logger.InfoContext(ctx, "pipeline run started",
		"run_id", run.ID.String(),
		"pathogen", run.PathogenName,
		"input_type", run.InputType,
	)

	go s.Execute(context.WithoutCancel(ctx), run)

	return run, nil
}

// Execute runs the curation stage synchronously: fetch, screen, decide, apply,
// persist. It never returns an error; every failure mode lands on the run as a
// stage-scoped error entry. Partial results are preserved.
func (s *Service) Execute(ctx context.Context, run *candidate.PipelineRun) {
	ctx, span := s.tracer.Start(ctx, "curation.run", trace.WithAttributes(
		attribute.String("run.id", run.ID.String()),
		attribute.String("run.input_type", string(run.InputType)),
	))
	defer span.End()

	start := time.Now()

	// Last resort: an unexpected panic anywhere in the batch is recorded on
	// the run instead of crashing the process. Candidates processed so far
	// stay on the run.
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "pipeline run panicked", "run_id", run.ID.String(), "panic", r)
			run.AddError(run.CurrentStage, fmt.Sprintf("unexpected failure: %v", r))
			s.finish(ctx, run, candidate.RunFailed, start)
		}
	}()

	run.CurrentStage = candidate.StageDataCuration

	records, err := s.source.Resolve(ctx, run.InputType, run.RawInput, run.MaxCandidates)
	if err != nil {
		s.logger.ErrorContext(ctx, "protein fetch failed", "run_id", run.ID.String(), "error", err)
		run.AddError(candidate.StageDataCuration, err.Error())
		s.finish(ctx, run, candidate.RunFailed, start)
		return
	}
	if len(records) == 0 {
		run.AddError(candidate.StageDataCuration, "No proteins found for input")
		s.finish(ctx, run, candidate.RunFailed, start)
		return
	}
	if len(records) > run.MaxCandidates {
		records = records[:run.MaxCandidates]
	}

	s.logger.InfoContext(ctx, "proteins fetched", "run_id", run.ID.String(), "count", len(records))

	for i := range records {
		run.Candidates = append(run.Candidates, s.process(ctx, run, records[i]))
	}

	run.ActiveCandidateCount = len(run.ActiveCandidates())
	run.CurrentStage = candidate.StageScreeningComplete
	s.finish(ctx, run, candidate.RunCompleted, start)

	s.logger.InfoContext(ctx, "pipeline run complete",
		"run_id", run.ID.String(),
		"candidates", len(run.Candidates),
		"active", run.ActiveCandidateCount,
	)
}

// process screens one protein record and applies the fused decision. Each
// candidate's mutation is confined to this call; a persistence failure is
// logged and skipped.
func (s *Service) process(ctx context.Context, run *candidate.PipelineRun, rec sequence.ProteinRecord) *candidate.Candidate {
	ctx, span := s.tracer.Start(ctx, "curation.candidate", trace.WithAttributes(
		attribute.String("protein.id", rec.ProteinID),
	))
	defer span.End()

	c := candidate.New(rec.ProteinID, rec.Name, rec.Sequence, rec.Source, candidate.StageDataCuration)

	s.screener.Screen(ctx, c)

	d := s.decider.Decide(ctx, decision.Summarize(c))
	decision.Apply(c, d)

	if err := s.store.SaveCandidate(ctx, run.ID, c); err != nil {
		s.logger.WarnContext(ctx, "failed to save candidate",
			"run_id", run.ID.String(),
			"protein_id", c.ProteinID,
			"error", err,
		)
	}

	s.metrics.IncrementCandidatesScreened(string(c.Status))
	return c
}

func (s *Service) finish(ctx context.Context, run *candidate.PipelineRun, status candidate.RunStatus, start time.Time) {
	now := time.Now()
	run.Status = status
	run.CompletedAt = &now

	if err := s.store.UpdateRun(ctx, run); err != nil {
		s.logger.WarnContext(ctx, "failed to update run", "run_id", run.ID.String(), "error", err)
	}

	s.metrics.IncrementRunsFinished(string(status))
	s.metrics.ObserveRunDuration(time.Since(start))
}

// GetRun returns a persisted run with its candidates.
func (s *Service) GetRun(ctx context.Context, runID id.RunID) (*candidate.PipelineRun, error) {
	return s.store.GetRun(ctx, runID)
}

// ListCandidates returns the persisted candidates of a run.
func (s *Service) ListCandidates(ctx context.Context, runID id.RunID) ([]*candidate.Candidate, error) {
	return s.store.ListCandidates(ctx, runID)
}
