package candidate

import (
	"time"

	id "vaxscreen/pkg/domain"
	dErrors "vaxscreen/pkg/domain-errors"
)

// InputType selects how a run's raw input is resolved into protein records.
type InputType string

const (
	InputSingleID   InputType = "single_id"
	InputRawText    InputType = "raw_text"
	InputSearchTerm InputType = "search_term"
)

// IsValid checks the input type against the supported enum values.
func (t InputType) IsValid() bool {
	switch t {
	case InputSingleID, InputRawText, InputSearchTerm:
		return true
	}
	return false
}

// ParseInputType constructs an InputType from external input.
func ParseInputType(s string) (InputType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "input type cannot be empty")
	}
	t := InputType(s)
	if !t.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown input type: %s", s)
	}
	return t, nil
}

// RunStatus tracks the lifecycle of a whole run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Pipeline stage markers.
const (
	StageInitialization    = "initialization"
	StageDataCuration      = "data_curation"
	StageAntigenScreening  = "antigen_screening"
	StageScreeningComplete = "antigen_screening_complete"
)

// StageError is a run-level error entry scoped to the stage that raised it.
type StageError struct {
	Stage     string    `json:"stage"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// PipelineRun is one execution of the screening pipeline over a set of
// candidate proteins.
type PipelineRun struct {
	ID           id.RunID  `json:"id"`
	PathogenName string    `json:"pathogen_name"`
	InputType    InputType `json:"input_type"`
	RawInput     string    `json:"raw_input"`

	TargetPopulations []string `json:"target_populations"`
	CoverageThreshold float64  `json:"coverage_threshold"`
	MaxCandidates     int      `json:"max_candidates"`

	CurrentStage         string       `json:"current_stage"`
	Candidates           []*Candidate `json:"candidates"`
	ActiveCandidateCount int          `json:"active_candidate_count"`

	Errors   []StageError `json:"errors"`
	Warnings []string     `json:"warnings"`

	Status      RunStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewRun creates a run at the initialization stage with project defaults.
func NewRun(pathogen string, inputType InputType, rawInput string) *PipelineRun {
	return &PipelineRun{
		ID:                id.NewRunID(),
		PathogenName:      pathogen,
		InputType:         inputType,
		RawInput:          rawInput,
		TargetPopulations: []string{"global"},
		CoverageThreshold: 0.70,
		MaxCandidates:     20,
		CurrentStage:      StageInitialization,
		Status:            RunRunning,
		CreatedAt:         time.Now(),
	}
}

// AddError appends a stage-scoped error entry.
func (r *PipelineRun) AddError(stage, message string) {
	r.Errors = append(r.Errors, StageError{
		Stage:     stage,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// AddWarning appends a timestamped warning message.
func (r *PipelineRun) AddWarning(message string) {
	r.Warnings = append(r.Warnings, time.Now().Format(time.RFC3339)+": "+message)
}

// ActiveCandidates returns candidates still in play after screening.
func (r *PipelineRun) ActiveCandidates() []*Candidate {
	var active []*Candidate
	for _, c := range r.Candidates {
		if c.Status == StatusActive {
			active = append(active, c)
		}
	}
	return active
}
