package sequence

import (
	"context"
	"fmt"
	"strings"

	"vaxscreen/internal/candidate"
)

const defaultSearchLimit = 20

// Source resolves a run's raw input into protein records, routing by input
// type: accession lookup, FASTA parsing, or a proteome search.
type Source struct {
	fetcher Fetcher
}

// NewSource builds a Source over the given fetcher.
func NewSource(fetcher Fetcher) (*Source, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	return &Source{fetcher: fetcher}, nil
}

// Resolve returns the protein records described by the raw input. A
// single_id input yields exactly one record; raw_text is parsed as FASTA;
// search_term queries the remote database, capped at max records (the
// default limit applies when max is not positive).
func (s *Source) Resolve(ctx context.Context, inputType candidate.InputType, raw string, max int) ([]ProteinRecord, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("input is empty")
	}
	if max <= 0 {
		max = defaultSearchLimit
	}

	switch inputType {
	case candidate.InputSingleID:
		rec, err := s.fetcher.FetchByID(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", raw, err)
		}
		return []ProteinRecord{*rec}, nil
	case candidate.InputRawText:
		return ParseFASTA(raw)
	case candidate.InputSearchTerm:
		recs, err := s.fetcher.Search(ctx, raw, max)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", raw, err)
		}
		return recs, nil
	default:
		return nil, fmt.Errorf("unsupported input type %q", inputType)
	}
}
