// Package cargo implements the sparse-index protocol (spec.md §4.3.5):
// crate names map to index file paths by length-derived prefix, each
// file is newline-delimited JSON with one line per published version,
// and yanked versions are filtered out.
package cargo

import "strings"

// indexPath derives the sparse-index URL suffix for a crate name, per
// spec.md §4.3.5's length-1/2/3/other prefix rule.
func indexPath(crate string) string {
	lower := strings.ToLower(crate)
	switch {
	case len(lower) == 1:
		return "1/" + lower
	case len(lower) == 2:
		return "2/" + lower
	case len(lower) == 3:
		return "3/" + lower[:1] + "/" + lower
	default:
		return lower[:2] + "/" + lower[2:4] + "/" + lower
	}
}

// indexLine is one NDJSON record in a crate's sparse-index file.
type indexLine struct {
	Name    string `json:"name"`
	Vers    string `json:"vers"`
	Yanked  bool   `json:"yanked"`
	License string `json:"license"`
	Links   string `json:"repository"`
}
