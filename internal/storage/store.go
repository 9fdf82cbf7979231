// Package storage persists pipeline runs and their candidates. Stores are
// interface-driven so the curation service stays testable and the in-memory
// and PostgreSQL implementations are interchangeable.
package storage

import (
	"context"

	"vaxscreen/internal/candidate"
	id "vaxscreen/pkg/domain"
)

// Store is the persistence surface of the pipeline.
//
// SaveCandidate upserts on (run, protein accession): re-screening the same
// protein within a run overwrites the previous row rather than duplicating it.
type Store interface {
	CreateRun(ctx context.Context, run *candidate.PipelineRun) error
	UpdateRun(ctx context.Context, run *candidate.PipelineRun) error
	GetRun(ctx context.Context, runID id.RunID) (*candidate.PipelineRun, error)
	SaveCandidate(ctx context.Context, runID id.RunID, c *candidate.Candidate) error
	ListCandidates(ctx context.Context, runID id.RunID) ([]*candidate.Candidate, error)
}
