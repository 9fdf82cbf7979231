// Package strings carries small slice normalization helpers shared across
// request handling.
package strings

import "strings"

// DedupeAndTrim trims each element and drops empties and duplicates,
// keeping first-occurrence order. Run target populations pass through here
// before they are persisted.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
