package screening

import "vaxscreen/internal/candidate"

const (
	minSafeLen        = 50
	maxSafeLen        = 2000
	repetitiveExempt  = 20
	maxResidueRun     = 10
	maxRunFraction    = 0.3
	signalPeptideScan = 25
)

// SafetyFlags runs the composition safety checks over a sequence and returns
// the flags they raise, in check order. The checks are independent; a
// sequence can collect several flags at once.
func SafetyFlags(seq string) []string {
	var flags []string

	// Length bounds are mutually exclusive by construction.
	if len(seq) < minSafeLen {
		flags = append(flags, candidate.FlagTooShort)
	} else if len(seq) > maxSafeLen {
		flags = append(flags, candidate.FlagVeryLong)
	}

	if !validAlphabet(seq) {
		flags = append(flags, candidate.FlagInvalidAminoAcid)
	}

	if isHighlyRepetitive(seq) {
		flags = append(flags, candidate.FlagRepetitive)
	}

	if hasNTerminalHydrophobicStretch(seq) {
		flags = append(flags, candidate.FlagSignalPeptide)
	}

	return flags
}

// isHighlyRepetitive flags sequences dominated by runs of one residue.
// Sequences under 20 residues are exempt.
func isHighlyRepetitive(seq string) bool {
	if len(seq) < repetitiveExempt {
		return false
	}
	run := longestRun(seq)
	return run > maxResidueRun || float64(run) > float64(len(seq))*maxRunFraction
}

// hasNTerminalHydrophobicStretch is a rough signal-peptide check on the first
// 25 residues, independent of the localization analyzer's call.
func hasNTerminalHydrophobicStretch(seq string) bool {
	if len(seq) < signalPeptideScan {
		return false
	}
	return fractionIn(seq[:signalPeptideScan], hydrophobicSet) > 0.5
}
