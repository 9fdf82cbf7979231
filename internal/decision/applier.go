package decision

import (
	"vaxscreen/internal/candidate"
	"vaxscreen/internal/decision/ports"
)

// Apply appends the decision record to the candidate's audit trail and
// performs the status/tier transition. Status and tier always change
// together, and only here.
//
// The default arm is a defensive no-op kept for the documented contract; an
// unrecognized verdict cannot reach it from the fusion engine because raw
// verdicts are parsed at that boundary.
func Apply(c *candidate.Candidate, d candidate.Decision) {
	c.AddDecision(d)

	switch d.Verdict {
	case candidate.VerdictAdvance:
		c.Status = candidate.StatusActive
		if d.Confidence.IsValid() {
			c.Tier = d.Confidence
		} else {
			c.Tier = candidate.TierMedium
		}
	case candidate.VerdictDeprioritize:
		c.Status = candidate.StatusDeprioritized
		c.Tier = candidate.TierLow
	case candidate.VerdictDiscard:
		c.Status = candidate.StatusDiscarded
		c.Tier = candidate.TierUncertain
	}

	if len(d.Flags) > 0 {
		c.AddFlag(d.Flags...)
	}
}

// Summarize builds the compact screening summary submitted to the fusion
// engine for one candidate.
func Summarize(c *candidate.Candidate) ports.Summary {
	return ports.Summary{
		ProteinID:      c.ProteinID,
		ProteinName:    c.Name,
		SequenceLength: len(c.Sequence),
		Localization:   string(c.Localization),
		Antigenicity:   c.Antigenicity,
		Flags:          c.Flags,
		Source:         c.Source,
	}
}
