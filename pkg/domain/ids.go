// Package domain holds shared domain primitives: typed identifiers that make
// mixing up runs, candidates, and proteins a compile-time error.
package domain

import (
	"github.com/google/uuid"

	dErrors "vaxscreen/pkg/domain-errors"
)

// RunID identifies a pipeline run.
type RunID uuid.UUID

// CandidateID identifies a candidate protein row within a run.
type CandidateID uuid.UUID

// NewRunID generates a fresh run identifier.
func NewRunID() RunID {
	return RunID(uuid.New())
}

// NewCandidateID generates a fresh candidate identifier.
func NewCandidateID() CandidateID {
	return CandidateID(uuid.New())
}

// ParseRunID validates external input as a run identifier.
// Invariant: IDs must be valid, non-empty, non-nil UUIDs.
func ParseRunID(s string) (RunID, error) {
	u, err := parseUUID(s, "run_id")
	return RunID(u), err
}

// ParseCandidateID validates external input as a candidate identifier.
func ParseCandidateID(s string) (CandidateID, error) {
	u, err := parseUUID(s, "candidate_id")
	return CandidateID(u), err
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", field)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid UUID", field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be the nil UUID", field)
	}
	return u, nil
}

func (id RunID) String() string { return uuid.UUID(id).String() }

func (id RunID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders the canonical UUID string, so JSON payloads carry the
// id as a string rather than a byte array.
func (id RunID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// UnmarshalText parses the canonical UUID string.
func (id *RunID) UnmarshalText(data []byte) error {
	u, err := parseUUID(string(data), "run_id")
	if err != nil {
		return err
	}
	*id = RunID(u)
	return nil
}

func (id CandidateID) String() string { return uuid.UUID(id).String() }

func (id CandidateID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders the canonical UUID string.
func (id CandidateID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// UnmarshalText parses the canonical UUID string.
func (id *CandidateID) UnmarshalText(data []byte) error {
	u, err := parseUUID(string(data), "candidate_id")
	if err != nil {
		return err
	}
	*id = CandidateID(u)
	return nil
}
