package handler

// startRunRequest is the POST /runs body.
type startRunRequest struct {
	PathogenName      string   `json:"pathogen_name"`
	InputType         string   `json:"input_type"`
	RawInput          string   `json:"raw_input"`
	TargetPopulations []string `json:"target_populations,omitempty"`
	CoverageThreshold float64  `json:"coverage_threshold,omitempty"`
	MaxCandidates     int      `json:"max_candidates,omitempty"`
}
