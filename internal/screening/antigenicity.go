package screening

// OrganismCategory selects the antigenicity weighting profile. Viral proteins
// get their own profile; everything else (bacteria, parasite, tumor) shares
// the general one.
type OrganismCategory string

const (
	CategoryVirus    OrganismCategory = "virus"
	CategoryBacteria OrganismCategory = "bacteria"
	CategoryParasite OrganismCategory = "parasite"
	CategoryTumor    OrganismCategory = "tumor"
)

// shortSequenceScore is the fixed floor for sequences under minAntigenicLen.
// It is a deliberate floor, not an error, and bypasses the weighted model.
const (
	shortSequenceScore = 0.25
	minAntigenicLen    = 50
)

// Antigenicity estimates how likely a protein is to provoke an immune
// response, as a score in [0.1, 1.0], from its residue composition.
// Deterministic and stateless: two calls on the same input agree exactly.
func Antigenicity(seq string, category OrganismCategory) float64 {
	if len(seq) < minAntigenicLen {
		return shortSequenceScore
	}

	length := float64(len(seq))
	hydrophobic := float64(countIn(seq, hydrophobicSet)) / length
	aromatic := float64(countIn(seq, aromaticSet)) / length
	charged := float64(countIn(seq, chargedSet)) / length
	polar := float64(countIn(seq, polarSet)) / length

	var score float64
	if category == CategoryVirus {
		// Viral proteins benefit from moderate hydrophobicity and aromatic
		// content; excess polarity is penalized.
		score = 0.4 +
			min64(hydrophobic*0.8, 0.25) +
			min64(aromatic*2.0, 0.15) +
			min64(charged*0.6, 0.15) -
			max64(polar-0.3, 0)*0.2
	} else {
		score = 0.3 +
			min64(hydrophobic*0.7, 0.2) +
			min64(aromatic*1.5, 0.1) +
			min64(charged*0.8, 0.2) +
			min64(polar*0.4, 0.1)
	}

	// Length bonus for surface-protein-sized sequences; very large proteins
	// trade accessibility for size.
	switch {
	case len(seq) >= 200 && len(seq) <= 1000:
		score += 0.05
	case len(seq) > 1000:
		score -= 0.05
	}

	if distinctResidues(seq) >= 16 {
		score += 0.05
	}

	return clamp(score, 0.1, 1.0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
