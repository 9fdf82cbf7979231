package screening_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"vaxscreen/internal/candidate"
	"vaxscreen/internal/screening"
)

// =============================================================================
// Safety-Flag Analyzer Test Suite
// =============================================================================

type SafetySuite struct {
	suite.Suite
}

func TestSafetySuite(t *testing.T) {
	suite.Run(t, new(SafetySuite))
}

func (s *SafetySuite) TestHomopolymerCollectsMultipleFlags() {
	// 30 identical residues: short AND repetitive at once, plus a fully
	// hydrophobic N-terminus that looks like a signal peptide.
	flags := screening.SafetyFlags(strings.Repeat("A", 30))
	s.Contains(flags, candidate.FlagTooShort)
	s.Contains(flags, candidate.FlagRepetitive)
	s.NotContains(flags, candidate.FlagVeryLong)
}

func (s *SafetySuite) TestLengthBoundsAreExclusive() {
	short := screening.SafetyFlags(allResidues(49))
	s.Contains(short, candidate.FlagTooShort)
	s.NotContains(short, candidate.FlagVeryLong)

	long := screening.SafetyFlags(allResidues(2001))
	s.Contains(long, candidate.FlagVeryLong)
	s.NotContains(long, candidate.FlagTooShort)

	ok := screening.SafetyFlags(allResidues(50))
	s.NotContains(ok, candidate.FlagTooShort)
	s.NotContains(ok, candidate.FlagVeryLong)

	atLimit := screening.SafetyFlags(allResidues(2000))
	s.NotContains(atLimit, candidate.FlagVeryLong)
}

func (s *SafetySuite) TestInvalidResidues() {
	flags := screening.SafetyFlags(allResidues(60) + "XZB")
	s.Contains(flags, candidate.FlagInvalidAminoAcid)

	s.NotContains(screening.SafetyFlags(allResidues(60)), candidate.FlagInvalidAminoAcid)
}

func (s *SafetySuite) TestRepetitiveRunThreshold() {
	// An 11-residue run trips the absolute threshold even in a long sequence.
	seq := allResidues(100) + strings.Repeat("Q", 11) + allResidues(100)
	s.Contains(screening.SafetyFlags(seq), candidate.FlagRepetitive)

	// A 10-residue run in the same context does not.
	seq = allResidues(100) + strings.Repeat("Q", 10) + allResidues(100)
	s.NotContains(screening.SafetyFlags(seq), candidate.FlagRepetitive)
}

func (s *SafetySuite) TestRepetitiveFractionThreshold() {
	// A run of 8 stays under the absolute cap of 10 but exceeds 30% of a
	// 25-residue sequence, so the fraction rule fires.
	seq := allResidues(8) + strings.Repeat("P", 8) + allResidues(9)
	s.Require().Len(seq, 25)
	s.Contains(screening.SafetyFlags(seq), candidate.FlagRepetitive)
}

func (s *SafetySuite) TestShortSequencesExemptFromRepetitionCheck() {
	s.NotContains(screening.SafetyFlags(strings.Repeat("A", 19)), candidate.FlagRepetitive)
}

func (s *SafetySuite) TestHydrophobicNTerminus() {
	seq := strings.Repeat("L", 25) + allResidues(75)
	s.Contains(screening.SafetyFlags(seq), candidate.FlagSignalPeptide)

	s.NotContains(screening.SafetyFlags(allResidues(100)), candidate.FlagSignalPeptide)
}

func (s *SafetySuite) TestCleanSequenceHasNoFlags() {
	s.Empty(screening.SafetyFlags(allResidues(400)))
}
