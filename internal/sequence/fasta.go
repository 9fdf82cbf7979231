package sequence

import (
	"bufio"
	"fmt"
	"strings"
)

// ParseFASTA parses single- or multi-record FASTA text into protein records.
// Record IDs are the first whitespace-delimited token of the header; the full
// header becomes the display name. Sequence lines are concatenated and
// upper-cased; alphabet validation is the safety analyzer's job, not the
// parser's.
func ParseFASTA(text string) ([]ProteinRecord, error) {
	var (
		records []ProteinRecord
		current *ProteinRecord
		seq     strings.Builder
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Sequence = seq.String()
		current.Length = len(current.Sequence)
		records = append(records, *current)
		current = nil
		seq.Reset()
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			flush()
			header := strings.TrimSpace(line[1:])
			id := header
			if i := strings.IndexAny(header, " \t"); i >= 0 {
				id = header[:i]
			}
			current = &ProteinRecord{
				ProteinID:           id,
				Name:                header,
				Organism:            "User provided",
				SubcellularLocation: "Unknown",
				Source:              SourceUserInput,
			}
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("fasta: sequence data before first header")
		}
		seq.WriteString(strings.ToUpper(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("fasta: read input: %w", err)
	}
	flush()

	return records, nil
}
