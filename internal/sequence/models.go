// Package sequence resolves a run's raw input into protein records: by
// identifier lookup against UniProt, by parsing pasted FASTA text, or by a
// proteome search. An empty result is a valid, non-error outcome.
package sequence

import "errors"

// ProteinRecord is the standardized protein data handed to the curation
// pipeline. One record becomes one candidate.
type ProteinRecord struct {
	ProteinID           string   `json:"protein_id"`
	Name                string   `json:"protein_name"`
	Sequence            string   `json:"sequence"`
	Organism            string   `json:"organism"`
	Length              int      `json:"length"`
	Keywords            []string `json:"keywords,omitempty"`
	SubcellularLocation string   `json:"subcellular_location,omitempty"`
	Source              string   `json:"source"`
}

// Provenance tags for ProteinRecord.Source.
const (
	SourceUniProt   = "uniprot"
	SourceUserInput = "user_input"
)

// ErrNotFound reports that a protein identifier has no record upstream.
var ErrNotFound = errors.New("protein not found")
