// Package screening implements the sequence feature analyzers (localization,
// antigenicity, safety flags) and the orchestrator that runs them against a
// candidate. The analyzers are pure functions: deterministic given input,
// no shared state.
package screening

import "strings"

// Alphabet is the 20-symbol standard amino-acid alphabet.
const Alphabet = "ACDEFGHIKLMNPQRSTVWY"

// Residue classes used across the analyzers.
const (
	hydrophobicSet = "AILMFWYV"
	aromaticSet    = "FWY"
	chargedSet     = "KRDE"
	polarSet       = "NQST"
	positiveSet    = "KR"
)

func inSet(set string, r byte) bool {
	return strings.IndexByte(set, r) >= 0
}

// countIn returns how many residues of seq belong to set.
func countIn(seq, set string) int {
	n := 0
	for i := 0; i < len(seq); i++ {
		if inSet(set, seq[i]) {
			n++
		}
	}
	return n
}

// fractionIn returns the ratio of residues of seq belonging to set.
// Empty input yields 0.
func fractionIn(seq, set string) float64 {
	if len(seq) == 0 {
		return 0
	}
	return float64(countIn(seq, set)) / float64(len(seq))
}

// longestRun returns the length of the longest run of one identical residue.
func longestRun(seq string) int {
	maxRun, run := 0, 0
	for i := 0; i < len(seq); i++ {
		if i > 0 && seq[i] == seq[i-1] {
			run++
		} else {
			run = 1
		}
		if run > maxRun {
			maxRun = run
		}
	}
	return maxRun
}

// distinctResidues counts the unique symbols appearing in seq.
func distinctResidues(seq string) int {
	var seen [256]bool
	n := 0
	for i := 0; i < len(seq); i++ {
		if !seen[seq[i]] {
			seen[seq[i]] = true
			n++
		}
	}
	return n
}

// validAlphabet reports whether every residue belongs to the standard
// 20-symbol alphabet.
func validAlphabet(seq string) bool {
	for i := 0; i < len(seq); i++ {
		if !inSet(Alphabet, seq[i]) {
			return false
		}
	}
	return true
}
