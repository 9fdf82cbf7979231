package decision

import (
	"fmt"

	"vaxscreen/internal/candidate"
	"vaxscreen/internal/decision/ports"
)

// Fallback scoring ladders. The rubric sent to the advisor mirrors these so
// both paths reward the same properties.
const (
	advanceHighAt   = 5
	advanceMediumAt = 3
	deprioritizeAt  = 1
)

// fallbackScore sums the rule ladders into one integer score.
// The score is non-decreasing in antigenicity and in localization tier.
func fallbackScore(s ports.Summary) int {
	score := 0

	switch {
	case s.Antigenicity > 0.7:
		score += 3
	case s.Antigenicity > 0.5:
		score += 2
	case s.Antigenicity > 0.3:
		score += 1
	}

	switch candidate.Localization(s.Localization) {
	case candidate.LocOuterMembrane, candidate.LocExtracellular:
		score += 3
	case candidate.LocPeriplasmic:
		score += 2
	case candidate.LocInnerMembrane:
		score += 1
	}

	switch {
	case s.SequenceLength >= 100 && s.SequenceLength <= 1000:
		score++
	case s.SequenceLength < 50 || s.SequenceLength > 2000:
		score--
	}

	if hasFlag(s.Flags, candidate.FlagTooShort) || hasFlag(s.Flags, candidate.FlagVeryLong) {
		score -= 2
	}
	if hasFlag(s.Flags, candidate.FlagScreeningFailed) {
		score -= 3
	}

	return score
}

// FallbackDecision applies the deterministic rule-based path used whenever
// the advisor is unavailable or its output is unusable. Pure domain logic:
// no I/O, no side effects; the same summary always yields the same record.
// The fallback_decision flag marks the verdict's provenance.
func FallbackDecision(s ports.Summary) candidate.Decision {
	score := fallbackScore(s)

	var (
		verdict    candidate.Verdict
		confidence candidate.ConfidenceTier
		reasoning  string
	)
	switch {
	case score >= advanceHighAt:
		verdict, confidence = candidate.VerdictAdvance, candidate.TierHigh
		reasoning = fmt.Sprintf("High antigenicity (%.2f) and good localization (%s)", s.Antigenicity, s.Localization)
	case score >= advanceMediumAt:
		verdict, confidence = candidate.VerdictAdvance, candidate.TierMedium
		reasoning = fmt.Sprintf("Moderate scores: antigenicity %.2f, location %s", s.Antigenicity, s.Localization)
	case score >= deprioritizeAt:
		verdict, confidence = candidate.VerdictDeprioritize, candidate.TierLow
		reasoning = fmt.Sprintf("Low scores but keeping for potential: antigenicity %.2f, location %s", s.Antigenicity, s.Localization)
	default:
		verdict, confidence = candidate.VerdictDiscard, candidate.TierLow
		reasoning = fmt.Sprintf("Poor vaccine candidate: low antigenicity (%.2f), location %s", s.Antigenicity, s.Localization)
	}

	return candidate.Decision{
		Stage:      candidate.StageAntigenScreening,
		Verdict:    verdict,
		Reasoning:  reasoning,
		Confidence: confidence,
		Flags:      []string{candidate.FlagFallbackDecision},
	}
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}
