package screening

import "vaxscreen/internal/candidate"

// OrganismClass selects the cell-envelope model used for localization calls.
type OrganismClass string

const (
	GramPositive OrganismClass = "gram_positive"
	GramNegative OrganismClass = "gram_negative"
	Archaea      OrganismClass = "archaea"
)

// IsValid checks the organism class against the supported enum values.
func (o OrganismClass) IsValid() bool {
	switch o {
	case GramPositive, GramNegative, Archaea:
		return true
	}
	return false
}

// Features is the per-signal breakdown behind a localization call.
type Features struct {
	SignalPeptide        bool `json:"signal_peptide"`
	TransmembraneRegions int  `json:"transmembrane_regions"`
	LipoproteinSignal    bool `json:"lipoprotein_signal"`
}

// LocalizationResult is the output of the localization analyzer. Computed
// fresh each call, never persisted as mutable state.
type LocalizationResult struct {
	Label        candidate.Localization `json:"label"`
	Confidence   float64                `json:"confidence"`
	SurfaceScore float64                `json:"surface_score"`
	Features     Features               `json:"features"`
}

const (
	signalWindow    = 30
	tmWindow        = 20
	tmHydrophobicAt = 0.65
	lipoboxWindow   = 20
)

// PredictLocalization predicts the subcellular compartment of a protein from
// envelope-targeting signals: an N-terminal signal peptide, transmembrane
// helix content, and a lipoprotein processing site. It never fails; input it
// cannot score comes back as unknown with zero confidence.
func PredictLocalization(seq string, organism OrganismClass) LocalizationResult {
	if len(seq) == 0 {
		return LocalizationResult{Label: candidate.LocUnknown}
	}

	nTerminal := seq
	if len(seq) > signalWindow {
		nTerminal = seq[:signalWindow]
	}

	feats := Features{
		SignalPeptide:        hasSignalPeptide(nTerminal),
		TransmembraneRegions: countTransmembraneRegions(seq),
		LipoproteinSignal:    hasLipoproteinSignal(seq),
	}

	var label candidate.Localization
	var confidence float64
	switch {
	case feats.LipoproteinSignal:
		label, confidence = candidate.LocOuterMembrane, 0.8
	case feats.TransmembraneRegions > 2:
		label, confidence = candidate.LocInnerMembrane, 0.7
	case feats.SignalPeptide && feats.TransmembraneRegions == 0:
		if organism == GramPositive {
			label = candidate.LocExtracellular
		} else {
			label = candidate.LocPeriplasmic
		}
		confidence = 0.6
	case feats.TransmembraneRegions == 1:
		label, confidence = candidate.LocInnerMembrane, 0.5
	default:
		label, confidence = candidate.LocCytoplasmic, 0.7
	}

	return LocalizationResult{
		Label:        label,
		Confidence:   confidence,
		SurfaceScore: SurfaceScore(label),
		Features:     feats,
	}
}

// SurfaceScore maps a compartment to its surface-accessibility score.
// Higher is more exposed to the immune system.
func SurfaceScore(label candidate.Localization) float64 {
	switch label {
	case candidate.LocOuterMembrane, candidate.LocExtracellular:
		return 1.0
	case candidate.LocPeriplasmic:
		return 0.6
	case candidate.LocInnerMembrane:
		return 0.3
	case candidate.LocCytoplasmic:
		return 0.1
	default:
		return 0.0
	}
}

// hasSignalPeptide checks the N-terminal window for the classic two-part
// signal: a positively charged n-region (first 5 residues) followed by a
// hydrophobic h-region (residues 6-15). Windows under 15 residues never
// qualify.
func hasSignalPeptide(nTerminal string) bool {
	if len(nTerminal) < 15 {
		return false
	}
	nRegion := nTerminal[:5]
	hRegion := nTerminal[5:15]

	return countIn(nRegion, positiveSet) >= 1 && fractionIn(hRegion, hydrophobicSet) > 0.4
}

// countTransmembraneRegions slides a 20-residue window across the sequence.
// A window at or above the hydrophobic threshold counts as one region and the
// scan skips the full window width to avoid double-counting overlapping hits.
func countTransmembraneRegions(seq string) int {
	count := 0
	for i := 0; i+tmWindow <= len(seq); {
		if fractionIn(seq[i:i+tmWindow], hydrophobicSet) >= tmHydrophobicAt {
			count++
			i += tmWindow
		} else {
			i++
		}
	}
	return count
}

// hasLipoproteinSignal scans the first 20 residues for a lipobox: a cysteine
// preceded by [LVI][ASTVI].
func hasLipoproteinSignal(seq string) bool {
	if len(seq) < lipoboxWindow {
		return false
	}
	nTerminal := seq[:lipoboxWindow]
	for i := 2; i < len(nTerminal); i++ {
		if nTerminal[i] == 'C' && inSet("LVI", nTerminal[i-2]) && inSet("ASTVI", nTerminal[i-1]) {
			return true
		}
	}
	return false
}
