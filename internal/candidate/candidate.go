// Package candidate holds the domain model for proteins moving through the
// screening pipeline: the candidate itself, its decision audit trail, and the
// closed enumerations for status, tier, verdict, and localization.
package candidate

import (
	"time"

	id "vaxscreen/pkg/domain"
	dErrors "vaxscreen/pkg/domain-errors"
)

// Status is the pipeline disposition of a candidate. Discarding is a status
// value, never a removal.
type Status string

const (
	StatusActive        Status = "active"
	StatusDeprioritized Status = "deprioritized"
	StatusDiscarded     Status = "discarded"
)

// IsValid checks the status against the supported enum values.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusDeprioritized, StatusDiscarded:
		return true
	}
	return false
}

// ConfidenceTier grades how much trust a decision placed in a candidate.
type ConfidenceTier string

const (
	TierHigh      ConfidenceTier = "high"
	TierMedium    ConfidenceTier = "medium"
	TierLow       ConfidenceTier = "low"
	TierUncertain ConfidenceTier = "uncertain"
	TierUnscored  ConfidenceTier = "unscored"
)

// IsValid checks the tier against the supported enum values.
func (t ConfidenceTier) IsValid() bool {
	switch t {
	case TierHigh, TierMedium, TierLow, TierUncertain, TierUnscored:
		return true
	}
	return false
}

// ParseConfidenceTier constructs a ConfidenceTier from external input, such
// as an advisor confidence label. Construct via this at trust boundaries;
// direct casting bypasses validation.
func ParseConfidenceTier(s string) (ConfidenceTier, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "confidence tier cannot be empty")
	}
	t := ConfidenceTier(s)
	if !t.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown confidence tier: %s", s)
	}
	return t, nil
}

// Verdict is the three-way classification outcome of decision fusion.
type Verdict string

const (
	VerdictAdvance      Verdict = "advance"
	VerdictDeprioritize Verdict = "deprioritize"
	VerdictDiscard      Verdict = "discard"
)

// IsValid checks the verdict against the supported enum values.
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictAdvance, VerdictDeprioritize, VerdictDiscard:
		return true
	}
	return false
}

// ParseVerdict constructs a Verdict from external input. Advisor replies pass
// through here, so an unrecognized verdict is rejected before it can reach
// the state applier.
func ParseVerdict(s string) (Verdict, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "verdict cannot be empty")
	}
	v := Verdict(s)
	if !v.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown verdict: %s", s)
	}
	return v, nil
}

// Localization is the predicted cellular compartment of a protein.
type Localization string

const (
	LocCytoplasmic   Localization = "cytoplasmic"
	LocInnerMembrane Localization = "inner_membrane"
	LocPeriplasmic   Localization = "periplasmic"
	LocOuterMembrane Localization = "outer_membrane"
	LocExtracellular Localization = "extracellular"
	LocUnknown       Localization = "unknown"
)

// IsSurface reports whether the compartment is surface-exposed, the property
// decision fusion rewards.
func (l Localization) IsSurface() bool {
	return l == LocOuterMembrane || l == LocExtracellular
}

// Safety and provenance flags attached to candidates and decisions.
const (
	FlagTooShort         = "too_short"
	FlagVeryLong         = "very_long"
	FlagInvalidAminoAcid = "invalid_amino_acids"
	FlagRepetitive       = "repetitive_sequence"
	FlagSignalPeptide    = "signal_peptide"
	FlagScreeningFailed  = "screening_failed"
	FlagFallbackDecision = "fallback_decision"
)

// Decision is one immutable entry in a candidate's audit trail.
type Decision struct {
	Stage      string         `json:"stage"`
	Verdict    Verdict        `json:"verdict"`
	Reasoning  string         `json:"reasoning"`
	Confidence ConfidenceTier `json:"confidence"`
	Flags      []string       `json:"flags,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Candidate is a protein under evaluation as a vaccine target.
//
// Invariant: Status and Tier change only together, through the decision
// applier; Flags are append-only within a stage; Decisions is append-only for
// the life of the candidate.
type Candidate struct {
	ID        id.CandidateID `json:"id"`
	ProteinID string         `json:"protein_id"`
	Name      string         `json:"name"`
	Sequence  string         `json:"sequence"`
	Source    string         `json:"source"`

	Stage  string         `json:"stage"`
	Status Status         `json:"status"`
	Tier   ConfidenceTier `json:"confidence_tier"`
	Flags  []string       `json:"flags"`

	Localization      Localization `json:"localization"`
	SurfaceScore      float64      `json:"surface_score"`
	TransmembraneRuns int          `json:"transmembrane_regions"`
	Antigenicity      float64      `json:"antigenicity_score"`

	Decisions []Decision `json:"decisions"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a candidate in its initial lifecycle state: active, unscored,
// at the given stage.
func New(proteinID, name, sequence, source, stage string) *Candidate {
	now := time.Now()
	return &Candidate{
		ID:        id.NewCandidateID(),
		ProteinID: proteinID,
		Name:      name,
		Sequence:  sequence,
		Source:    source,
		Stage:     stage,
		Status:    StatusActive,
		Tier:      TierUnscored,
		Flags:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddFlag appends flags in order. Duplicates are allowed by contract.
func (c *Candidate) AddFlag(flags ...string) {
	c.Flags = append(c.Flags, flags...)
}

// HasFlag reports whether a flag is present.
func (c *Candidate) HasFlag(flag string) bool {
	for _, f := range c.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// AddDecision appends a record to the audit trail and bumps UpdatedAt. The
// trail is append-only; records are never mutated after this call.
func (c *Candidate) AddDecision(d Decision) {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	c.Decisions = append(c.Decisions, d)
	c.UpdatedAt = time.Now()
}
