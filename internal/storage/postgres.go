package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vaxscreen/internal/candidate"
	id "vaxscreen/pkg/domain"
)

// Schema creates the run and candidate tables. Candidates are keyed by
// (run_id, protein_id) so re-screening a protein within a run upserts instead
// of duplicating rows.
const Schema = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id                     UUID PRIMARY KEY,
	pathogen_name          TEXT NOT NULL,
	input_type             TEXT NOT NULL,
	raw_input              TEXT NOT NULL,
	target_populations     TEXT[] NOT NULL DEFAULT '{}',
	coverage_threshold     DOUBLE PRECISION NOT NULL,
	max_candidates         INTEGER NOT NULL,
	current_stage          TEXT NOT NULL,
	active_candidate_count INTEGER NOT NULL DEFAULT 0,
	errors                 JSONB NOT NULL DEFAULT '[]',
	warnings               TEXT[] NOT NULL DEFAULT '{}',
	status                 TEXT NOT NULL,
	created_at             TIMESTAMPTZ NOT NULL,
	completed_at           TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS candidates (
	id                    UUID NOT NULL,
	run_id                UUID NOT NULL REFERENCES pipeline_runs(id) ON DELETE CASCADE,
	protein_id            TEXT NOT NULL,
	name                  TEXT NOT NULL,
	sequence              TEXT NOT NULL,
	source                TEXT NOT NULL,
	stage                 TEXT NOT NULL,
	status                TEXT NOT NULL,
	confidence_tier       TEXT NOT NULL,
	flags                 TEXT[] NOT NULL DEFAULT '{}',
	localization          TEXT NOT NULL DEFAULT 'unknown',
	surface_score         DOUBLE PRECISION NOT NULL DEFAULT 0,
	transmembrane_regions INTEGER NOT NULL DEFAULT 0,
	antigenicity_score    DOUBLE PRECISION NOT NULL DEFAULT 0,
	decisions             JSONB NOT NULL DEFAULT '[]',
	created_at            TIMESTAMPTZ NOT NULL,
	updated_at            TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, protein_id)
);

CREATE INDEX IF NOT EXISTS candidates_run_status_idx ON candidates (run_id, status);
`

// Postgres persists runs and candidates via a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(pool *pgxpool.Pool) (*Postgres, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Postgres{pool: pool}, nil
}

// EnsureSchema applies the schema. Safe to call on every startup.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) CreateRun(ctx context.Context, run *candidate.PipelineRun) error {
	errorsJSON, err := json.Marshal(run.Errors)
	if err != nil {
		return fmt.Errorf("marshal run errors: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO pipeline_runs (
			id, pathogen_name, input_type, raw_input, target_populations,
			coverage_threshold, max_candidates, current_stage,
			active_candidate_count, errors, warnings, status, created_at, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		run.ID.String(), run.PathogenName, string(run.InputType), run.RawInput,
		run.TargetPopulations, run.CoverageThreshold, run.MaxCandidates,
		run.CurrentStage, run.ActiveCandidateCount, errorsJSON, run.Warnings,
		string(run.Status), run.CreatedAt, run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

func (p *Postgres) UpdateRun(ctx context.Context, run *candidate.PipelineRun) error {
	errorsJSON, err := json.Marshal(run.Errors)
	if err != nil {
		return fmt.Errorf("marshal run errors: %w", err)
	}
	tag, err := p.pool.Exec(ctx, `
		UPDATE pipeline_runs SET
			current_stage = $2,
			active_candidate_count = $3,
			errors = $4,
			warnings = $5,
			status = $6,
			completed_at = $7
		WHERE id = $1`,
		run.ID.String(), run.CurrentStage, run.ActiveCandidateCount,
		errorsJSON, run.Warnings, string(run.Status), run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) GetRun(ctx context.Context, runID id.RunID) (*candidate.PipelineRun, error) {
	var (
		run        candidate.PipelineRun
		runIDStr   string
		inputType  string
		status     string
		errorsJSON []byte
	)
	err := p.pool.QueryRow(ctx, `
		SELECT id, pathogen_name, input_type, raw_input, target_populations,
			coverage_threshold, max_candidates, current_stage,
			active_candidate_count, errors, warnings, status, created_at, completed_at
		FROM pipeline_runs WHERE id = $1`, runID.String(),
	).Scan(
		&runIDStr, &run.PathogenName, &inputType, &run.RawInput,
		&run.TargetPopulations, &run.CoverageThreshold, &run.MaxCandidates,
		&run.CurrentStage, &run.ActiveCandidateCount, &errorsJSON,
		&run.Warnings, &status, &run.CreatedAt, &run.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	if run.ID, err = id.ParseRunID(runIDStr); err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	run.InputType = candidate.InputType(inputType)
	run.Status = candidate.RunStatus(status)
	if err := json.Unmarshal(errorsJSON, &run.Errors); err != nil {
		return nil, fmt.Errorf("unmarshal run errors: %w", err)
	}
	if run.Candidates, err = p.ListCandidates(ctx, runID); err != nil {
		return nil, err
	}
	return &run, nil
}

func (p *Postgres) SaveCandidate(ctx context.Context, runID id.RunID, c *candidate.Candidate) error {
	decisionsJSON, err := json.Marshal(c.Decisions)
	if err != nil {
		return fmt.Errorf("marshal decisions: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO candidates (
			id, run_id, protein_id, name, sequence, source, stage, status,
			confidence_tier, flags, localization, surface_score,
			transmembrane_regions, antigenicity_score, decisions, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (run_id, protein_id) DO UPDATE SET
			name = EXCLUDED.name,
			sequence = EXCLUDED.sequence,
			source = EXCLUDED.source,
			stage = EXCLUDED.stage,
			status = EXCLUDED.status,
			confidence_tier = EXCLUDED.confidence_tier,
			flags = EXCLUDED.flags,
			localization = EXCLUDED.localization,
			surface_score = EXCLUDED.surface_score,
			transmembrane_regions = EXCLUDED.transmembrane_regions,
			antigenicity_score = EXCLUDED.antigenicity_score,
			decisions = EXCLUDED.decisions,
			updated_at = EXCLUDED.updated_at`,
		c.ID.String(), runID.String(), c.ProteinID, c.Name, c.Sequence, c.Source,
		c.Stage, string(c.Status), string(c.Tier), c.Flags,
		string(c.Localization), c.SurfaceScore, c.TransmembraneRuns,
		c.Antigenicity, decisionsJSON, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save candidate: %w", err)
	}
	return nil
}

func (p *Postgres) ListCandidates(ctx context.Context, runID id.RunID) ([]*candidate.Candidate, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, protein_id, name, sequence, source, stage, status,
			confidence_tier, flags, localization, surface_score,
			transmembrane_regions, antigenicity_score, decisions, created_at, updated_at
		FROM candidates WHERE run_id = $1 ORDER BY created_at, protein_id`,
		runID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var out []*candidate.Candidate
	for rows.Next() {
		var (
			c             candidate.Candidate
			idStr         string
			status        string
			tier          string
			localization  string
			decisionsJSON []byte
		)
		if err := rows.Scan(
			&idStr, &c.ProteinID, &c.Name, &c.Sequence, &c.Source, &c.Stage,
			&status, &tier, &c.Flags, &localization, &c.SurfaceScore,
			&c.TransmembraneRuns, &c.Antigenicity, &decisionsJSON,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		if c.ID, err = id.ParseCandidateID(idStr); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		c.Status = candidate.Status(status)
		c.Tier = candidate.ConfidenceTier(tier)
		c.Localization = candidate.Localization(localization)
		if err := json.Unmarshal(decisionsJSON, &c.Decisions); err != nil {
			return nil, fmt.Errorf("unmarshal decisions: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return out, nil
}
