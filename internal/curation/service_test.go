package curation_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"vaxscreen/internal/candidate"
	"vaxscreen/internal/curation"
	"vaxscreen/internal/decision/ports"
	"vaxscreen/internal/sequence"
	id "vaxscreen/pkg/domain"
	dErrors "vaxscreen/pkg/domain-errors"
)

// =============================================================================
// Pipeline Service Test Suite
// =============================================================================

type stubSource struct {
	records []sequence.ProteinRecord
	err     error
}

func (s *stubSource) Resolve(_ context.Context, _ candidate.InputType, _ string, _ int) ([]sequence.ProteinRecord, error) {
	return s.records, s.err
}

// stubScreener marks every candidate with a fixed screening outcome.
type stubScreener struct {
	antigenicity float64
	localization candidate.Localization
	panicOn      string
	screened     []string
}

func (s *stubScreener) Screen(_ context.Context, c *candidate.Candidate) {
	if s.panicOn != "" && c.ProteinID == s.panicOn {
		panic("analyzer blew up")
	}
	s.screened = append(s.screened, c.ProteinID)
	c.Antigenicity = s.antigenicity
	c.Localization = s.localization
	c.Stage = candidate.StageAntigenScreening
}

type stubDecider struct {
	verdict   candidate.Verdict
	summaries []ports.Summary
}

func (s *stubDecider) Decide(_ context.Context, summary ports.Summary) candidate.Decision {
	s.summaries = append(s.summaries, summary)
	return candidate.Decision{
		Stage:      candidate.StageAntigenScreening,
		Verdict:    s.verdict,
		Reasoning:  "stubbed",
		Confidence: candidate.TierMedium,
	}
}

// stubStore keeps runs and candidates in maps; individual calls can be made
// to fail to exercise the degraded paths.
type stubStore struct {
	mu sync.Mutex

	runs       map[id.RunID]*candidate.PipelineRun
	saved      map[id.RunID][]*candidate.Candidate
	createErr  error
	updateErr  error
	saveErr    error
	updates    int
	lastStatus candidate.RunStatus
}

func newStubStore() *stubStore {
	return &stubStore{
		runs:  make(map[id.RunID]*candidate.PipelineRun),
		saved: make(map[id.RunID][]*candidate.Candidate),
	}
}

func (s *stubStore) CreateRun(_ context.Context, run *candidate.PipelineRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.runs[run.ID] = run
	return nil
}

func (s *stubStore) UpdateRun(_ context.Context, run *candidate.PipelineRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	s.lastStatus = run.Status
	if s.updateErr != nil {
		return s.updateErr
	}
	s.runs[run.ID] = run
	return nil
}

func (s *stubStore) GetRun(_ context.Context, runID id.RunID) (*candidate.PipelineRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "record not found")
	}
	return run, nil
}

func (s *stubStore) SaveCandidate(_ context.Context, runID id.RunID, c *candidate.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved[runID] = append(s.saved[runID], c)
	return nil
}

func (s *stubStore) ListCandidates(_ context.Context, runID id.RunID) ([]*candidate.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved[runID], nil
}

type PipelineServiceSuite struct {
	suite.Suite

	source   *stubSource
	screener *stubScreener
	decider  *stubDecider
	store    *stubStore
	svc      *curation.Service
}

func TestPipelineServiceSuite(t *testing.T) {
	suite.Run(t, new(PipelineServiceSuite))
}

func (s *PipelineServiceSuite) SetupTest() {
	s.source = &stubSource{}
	s.screener = &stubScreener{antigenicity: 0.8, localization: candidate.LocOuterMembrane}
	s.decider = &stubDecider{verdict: candidate.VerdictAdvance}
	s.store = newStubStore()

	var err error
	s.svc, err = curation.NewService(s.source, s.screener, s.decider, s.store,
		curation.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)
}

func (s *PipelineServiceSuite) newRun() *candidate.PipelineRun {
	return candidate.NewRun("Borrelia burgdorferi", candidate.InputSearchTerm, "ospA lipoprotein")
}

func records(ids ...string) []sequence.ProteinRecord {
	out := make([]sequence.ProteinRecord, 0, len(ids))
	for _, pid := range ids {
		out = append(out, sequence.ProteinRecord{
			ProteinID: pid,
			Name:      "protein " + pid,
			Sequence:  "MKKLACDEFGHIKLMNPQRSTVWY",
			Source:    sequence.SourceUniProt,
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Construction and request validation
// ---------------------------------------------------------------------------

func (s *PipelineServiceSuite) TestNewServiceRequiresCollaborators() {
	_, err := curation.NewService(nil, s.screener, s.decider, s.store)
	s.Require().Error(err)

	_, err = curation.NewService(s.source, nil, s.decider, s.store)
	s.Require().Error(err)

	_, err = curation.NewService(s.source, s.screener, nil, s.store)
	s.Require().Error(err)

	_, err = curation.NewService(s.source, s.screener, s.decider, nil)
	s.Require().Error(err)
}

func (s *PipelineServiceSuite) TestStartRunValidation() {
	cases := []struct {
		name   string
		params curation.RunParams
	}{
		{"empty pathogen", curation.RunParams{InputType: "single_id", RawInput: "P0DTC2"}},
		{"empty input", curation.RunParams{PathogenName: "SARS-CoV-2", InputType: "single_id"}},
		{"bad input type", curation.RunParams{PathogenName: "SARS-CoV-2", InputType: "telepathy", RawInput: "P0DTC2"}},
		{"coverage above one", curation.RunParams{PathogenName: "SARS-CoV-2", InputType: "single_id", RawInput: "P0DTC2", CoverageThreshold: 1.5}},
		{"negative coverage", curation.RunParams{PathogenName: "SARS-CoV-2", InputType: "single_id", RawInput: "P0DTC2", CoverageThreshold: -0.1}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.svc.StartRun(context.Background(), tc.params)
			s.Require().Error(err)
		})
	}
}

func (s *PipelineServiceSuite) TestStartRunPersistsAndReturnsInitialState() {
	s.source.records = records("P00001")

	run, err := s.svc.StartRun(context.Background(), curation.RunParams{
		PathogenName:      "SARS-CoV-2",
		InputType:         "single_id",
		RawInput:          "P00001",
		TargetPopulations: []string{"global", "elderly"},
		CoverageThreshold: 0.85,
		MaxCandidates:     5,
	})

	s.Require().NoError(err)
	s.Equal(candidate.RunRunning, run.Status)
	s.Equal([]string{"global", "elderly"}, run.TargetPopulations)
	s.Equal(0.85, run.CoverageThreshold)
	s.Equal(5, run.MaxCandidates)

	s.store.mu.Lock()
	_, created := s.store.runs[run.ID]
	s.store.mu.Unlock()
	s.True(created)
}

func (s *PipelineServiceSuite) TestStartRunNormalizesTargetPopulations() {
	s.source.records = records("P00001")

	run, err := s.svc.StartRun(context.Background(), curation.RunParams{
		PathogenName:      "SARS-CoV-2",
		InputType:         "single_id",
		RawInput:          "P00001",
		TargetPopulations: []string{"  global ", "elderly", "global", "  "},
	})

	s.Require().NoError(err)
	s.Equal([]string{"global", "elderly"}, run.TargetPopulations)
}

func (s *PipelineServiceSuite) TestStartRunFailsWhenCreateFails() {
	s.store.createErr = errors.New("db down")

	_, err := s.svc.StartRun(context.Background(), curation.RunParams{
		PathogenName: "SARS-CoV-2",
		InputType:    "single_id",
		RawInput:     "P0DTC2",
	})

	s.Require().Error(err)
	s.Contains(err.Error(), "db down")
}

// ---------------------------------------------------------------------------
// Pipeline execution
// ---------------------------------------------------------------------------

func (s *PipelineServiceSuite) TestExecuteHappyPath() {
	s.source.records = records("P00001", "P00002", "P00003")
	run := s.newRun()

	s.svc.Execute(context.Background(), run)

	s.Require().Len(run.Candidates, 3)
	s.Equal(candidate.StageScreeningComplete, run.CurrentStage)
	s.Equal(candidate.RunCompleted, run.Status)
	s.Require().NotNil(run.CompletedAt)
	s.Empty(run.Errors)
	s.Equal(3, run.ActiveCandidateCount)

	for i, c := range run.Candidates {
		s.Equal(s.source.records[i].ProteinID, c.ProteinID)
		s.Equal(candidate.StatusActive, c.Status)
		s.Require().Len(c.Decisions, 1)
		s.Equal(candidate.VerdictAdvance, c.Decisions[0].Verdict)
	}

	// every candidate was persisted and the run state updated once
	s.Len(s.store.saved[run.ID], 3)
	s.Equal(1, s.store.updates)
	s.Equal(candidate.RunCompleted, s.store.lastStatus)
}

func (s *PipelineServiceSuite) TestExecuteCountsOnlyActiveCandidates() {
	s.source.records = records("P00001", "P00002")
	s.decider.verdict = candidate.VerdictDiscard
	run := s.newRun()

	s.svc.Execute(context.Background(), run)

	s.Len(run.Candidates, 2)
	s.Equal(0, run.ActiveCandidateCount)
	s.Equal(candidate.RunCompleted, run.Status)
}

func (s *PipelineServiceSuite) TestExecuteTruncatesToMaxCandidates() {
	s.source.records = records("P00001", "P00002", "P00003", "P00004")
	run := s.newRun()
	run.MaxCandidates = 2

	s.svc.Execute(context.Background(), run)

	s.Len(run.Candidates, 2)
	s.Equal("P00002", run.Candidates[1].ProteinID)
}

func (s *PipelineServiceSuite) TestExecuteNoProteinsFound() {
	s.source.records = nil
	run := s.newRun()

	s.svc.Execute(context.Background(), run)

	s.Empty(run.Candidates)
	s.Require().Len(run.Errors, 1)
	s.Equal(candidate.StageDataCuration, run.Errors[0].Stage)
	s.Equal("No proteins found for input", run.Errors[0].Message)
	s.Equal(candidate.RunFailed, run.Status)
	s.NotNil(run.CompletedAt)
}

func (s *PipelineServiceSuite) TestExecuteFetchFailure() {
	s.source.err = fmt.Errorf("search %q: upstream down", "ospA")
	run := s.newRun()

	s.svc.Execute(context.Background(), run)

	s.Empty(run.Candidates)
	s.Require().Len(run.Errors, 1)
	s.Equal(candidate.StageDataCuration, run.Errors[0].Stage)
	s.Contains(run.Errors[0].Message, "upstream down")
	s.Equal(candidate.RunFailed, run.Status)
}

func (s *PipelineServiceSuite) TestExecuteToleratesSaveFailures() {
	s.source.records = records("P00001", "P00002")
	s.store.saveErr = errors.New("disk full")
	run := s.newRun()

	s.svc.Execute(context.Background(), run)

	// persistence failed but the batch carried on with results in memory
	s.Len(run.Candidates, 2)
	s.Equal(candidate.RunCompleted, run.Status)
	s.Empty(run.Errors)
}

func (s *PipelineServiceSuite) TestExecuteToleratesUpdateFailure() {
	s.source.records = records("P00001")
	s.store.updateErr = errors.New("db down")
	run := s.newRun()

	s.svc.Execute(context.Background(), run)

	s.Equal(candidate.RunCompleted, run.Status)
	s.Len(run.Candidates, 1)
}

func (s *PipelineServiceSuite) TestExecuteRecoversFromPanic() {
	s.source.records = records("P00001", "P00002", "P00003")
	s.screener.panicOn = "P00002"
	run := s.newRun()

	s.Require().NotPanics(func() {
		s.svc.Execute(context.Background(), run)
	})

	s.Equal(candidate.RunFailed, run.Status)
	s.Require().Len(run.Errors, 1)
	s.Contains(run.Errors[0].Message, "unexpected failure")
	// the candidate processed before the panic survives on the run
	s.Len(run.Candidates, 1)
	s.NotNil(run.CompletedAt)
}

func (s *PipelineServiceSuite) TestExecuteHandsScreeningSummaryToDecider() {
	s.source.records = records("P00001")
	run := s.newRun()

	s.svc.Execute(context.Background(), run)

	s.Require().Len(s.decider.summaries, 1)
	summary := s.decider.summaries[0]
	s.Equal("P00001", summary.ProteinID)
	s.Equal(0.8, summary.Antigenicity)
	s.Equal(string(candidate.LocOuterMembrane), summary.Localization)
}

// ---------------------------------------------------------------------------
// Read paths
// ---------------------------------------------------------------------------

func (s *PipelineServiceSuite) TestGetRunPassesThrough() {
	run := s.newRun()
	s.Require().NoError(s.store.CreateRun(context.Background(), run))

	got, err := s.svc.GetRun(context.Background(), run.ID)

	s.Require().NoError(err)
	s.Equal(run.ID, got.ID)
}

func (s *PipelineServiceSuite) TestGetMissingRun() {
	_, err := s.svc.GetRun(context.Background(), id.NewRunID())

	s.Require().Error(err)
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}
