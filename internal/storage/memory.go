package storage

import (
	"context"
	"sync"

	"vaxscreen/internal/candidate"
	id "vaxscreen/pkg/domain"
)

// Memory keeps runs and candidates in process memory. It favors clarity over
// performance and is the default store when no database is configured.
type Memory struct {
	mu         sync.RWMutex
	runs       map[id.RunID]*candidate.PipelineRun
	candidates map[id.RunID]map[string]*candidate.Candidate
	order      map[id.RunID][]string
}

var _ Store = (*Memory)(nil)

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		runs:       make(map[id.RunID]*candidate.PipelineRun),
		candidates: make(map[id.RunID]map[string]*candidate.Candidate),
		order:      make(map[id.RunID][]string),
	}
}

func (m *Memory) CreateRun(_ context.Context, run *candidate.PipelineRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = cloneRun(run)
	return nil
}

func (m *Memory) UpdateRun(_ context.Context, run *candidate.PipelineRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[run.ID]; !ok {
		return ErrNotFound
	}
	m.runs[run.ID] = cloneRun(run)
	return nil
}

func (m *Memory) GetRun(_ context.Context, runID id.RunID) (*candidate.PipelineRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[runID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRun(run), nil
}

func (m *Memory) SaveCandidate(_ context.Context, runID id.RunID, c *candidate.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[runID]; !ok {
		return ErrNotFound
	}
	byProtein, ok := m.candidates[runID]
	if !ok {
		byProtein = make(map[string]*candidate.Candidate)
		m.candidates[runID] = byProtein
	}
	if _, exists := byProtein[c.ProteinID]; !exists {
		m.order[runID] = append(m.order[runID], c.ProteinID)
	}
	byProtein[c.ProteinID] = cloneCandidate(c)
	return nil
}

func (m *Memory) ListCandidates(_ context.Context, runID id.RunID) ([]*candidate.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.runs[runID]; !ok {
		return nil, ErrNotFound
	}
	out := make([]*candidate.Candidate, 0, len(m.order[runID]))
	for _, proteinID := range m.order[runID] {
		out = append(out, cloneCandidate(m.candidates[runID][proteinID]))
	}
	return out, nil
}

// Clones keep callers from mutating stored state through shared slices.

func cloneRun(run *candidate.PipelineRun) *candidate.PipelineRun {
	cp := *run
	cp.TargetPopulations = append([]string(nil), run.TargetPopulations...)
	cp.Errors = append([]candidate.StageError(nil), run.Errors...)
	cp.Warnings = append([]string(nil), run.Warnings...)
	cp.Candidates = make([]*candidate.Candidate, 0, len(run.Candidates))
	for _, c := range run.Candidates {
		cp.Candidates = append(cp.Candidates, cloneCandidate(c))
	}
	if run.CompletedAt != nil {
		at := *run.CompletedAt
		cp.CompletedAt = &at
	}
	return &cp
}

func cloneCandidate(c *candidate.Candidate) *candidate.Candidate {
	cp := *c
	cp.Flags = append([]string(nil), c.Flags...)
	cp.Decisions = make([]candidate.Decision, 0, len(c.Decisions))
	for _, d := range c.Decisions {
		d.Flags = append([]string(nil), d.Flags...)
		cp.Decisions = append(cp.Decisions, d)
	}
	return &cp
}
