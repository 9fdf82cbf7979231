package handler

import (
	"time"

	"vaxscreen/internal/candidate"
)

// runResponse is the run view returned by POST /runs and GET /runs/{runID}.
// Candidates are exposed through their own endpoint; the run carries counts.
type runResponse struct {
	ID                   string                 `json:"id"`
	PathogenName         string                 `json:"pathogen_name"`
	InputType            string                 `json:"input_type"`
	TargetPopulations    []string               `json:"target_populations"`
	CoverageThreshold    float64                `json:"coverage_threshold"`
	MaxCandidates        int                    `json:"max_candidates"`
	CurrentStage         string                 `json:"current_stage"`
	Status               string                 `json:"status"`
	CandidateCount       int                    `json:"candidate_count"`
	ActiveCandidateCount int                    `json:"active_candidate_count"`
	Errors               []candidate.StageError `json:"errors"`
	Warnings             []string               `json:"warnings"`
	CreatedAt            time.Time              `json:"created_at"`
	CompletedAt          *time.Time             `json:"completed_at,omitempty"`
}

func toRunResponse(run *candidate.PipelineRun) runResponse {
	resp := runResponse{
		ID:                   run.ID.String(),
		PathogenName:         run.PathogenName,
		InputType:            string(run.InputType),
		TargetPopulations:    run.TargetPopulations,
		CoverageThreshold:    run.CoverageThreshold,
		MaxCandidates:        run.MaxCandidates,
		CurrentStage:         run.CurrentStage,
		Status:               string(run.Status),
		CandidateCount:       len(run.Candidates),
		ActiveCandidateCount: run.ActiveCandidateCount,
		Errors:               run.Errors,
		Warnings:             run.Warnings,
		CreatedAt:            run.CreatedAt,
		CompletedAt:          run.CompletedAt,
	}
	if resp.Errors == nil {
		resp.Errors = []candidate.StageError{}
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	return resp
}

// candidatesResponse is the GET /runs/{runID}/candidates body. Candidates
// serialize with their full audit trail.
type candidatesResponse struct {
	RunID      string                 `json:"run_id"`
	Candidates []*candidate.Candidate `json:"candidates"`
}
