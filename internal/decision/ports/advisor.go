// Package ports defines the collaborator interfaces the decision engine
// depends on, so the engine stays free of HTTP and storage concerns.
package ports

import "context"

// Summary is the compact view of a candidate's screening results submitted
// for an advisory opinion. It is a port model: plain fields, no domain
// behavior.
type Summary struct {
	ProteinID      string   `json:"protein_id"`
	ProteinName    string   `json:"protein_name"`
	SequenceLength int      `json:"sequence_length"`
	Localization   string   `json:"localization"`
	Antigenicity   float64  `json:"antigenicity_score"`
	Flags          []string `json:"flags"`
	Source         string   `json:"source"`
}

// Advice is the advisor's structured reply. Verdict and Confidence arrive as
// raw strings; the fusion engine parses them into closed types and falls back
// if they do not parse.
type Advice struct {
	Verdict    string   `json:"decision"`
	Reasoning  string   `json:"reasoning"`
	Confidence string   `json:"confidence"`
	Flags      []string `json:"flags"`
}

// Advisor is the external advisory classifier. Any failure (transport,
// timeout, malformed payload, missing credentials) surfaces as an error and
// is never propagated past the fusion engine.
type Advisor interface {
	Advise(ctx context.Context, summary Summary) (*Advice, error)
}
