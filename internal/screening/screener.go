package screening

import (
	"context"
	"fmt"
	"log/slog"

	"vaxscreen/internal/candidate"
)

// Screener runs all analyzers against one candidate and writes the results
// onto it. An analyzer fault never propagates: the candidate is tagged
// screening_failed and already-computed fields stay as-is, so one bad
// sequence cannot abort a batch.
type Screener struct {
	organism OrganismClass
	category OrganismCategory
	logger   *slog.Logger
}

// Option configures a Screener.
type Option func(*Screener)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Screener) {
		s.logger = logger
	}
}

// NewScreener builds a screener for the given organism model.
func NewScreener(organism OrganismClass, category OrganismCategory, opts ...Option) (*Screener, error) {
	if !organism.IsValid() {
		return nil, fmt.Errorf("organism class %q is not supported", organism)
	}
	s := &Screener{organism: organism, category: category}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Screen runs localization, antigenicity, and safety analysis in sequence,
// attaching results to the candidate.
func (s *Screener) Screen(ctx context.Context, c *candidate.Candidate) {
	defer func() {
		if r := recover(); r != nil {
			if s.logger != nil {
				s.logger.ErrorContext(ctx, "screening failed",
					"protein_id", c.ProteinID,
					"panic", r,
				)
			}
			c.AddFlag(candidate.FlagScreeningFailed)
		}
	}()

	loc := PredictLocalization(c.Sequence, s.organism)
	c.Localization = loc.Label
	c.SurfaceScore = loc.SurfaceScore
	c.TransmembraneRuns = loc.Features.TransmembraneRegions

	c.Antigenicity = Antigenicity(c.Sequence, s.category)

	c.AddFlag(SafetyFlags(c.Sequence)...)

	if s.logger != nil {
		s.logger.InfoContext(ctx, "screening complete",
			"protein_id", c.ProteinID,
			"localization", c.Localization,
			"antigenicity", c.Antigenicity,
			"flags", c.Flags,
		)
	}
}
