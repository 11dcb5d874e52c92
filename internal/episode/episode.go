// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package episode formats episode references into compact range notation.
package episode

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Ref identifies an episode by its position within the parent show.
type Ref struct {
	Season int
	Number int
}

// FormatRanges renders refs as a comma-separated list of episode ranges,
// collapsing maximal runs of consecutive numbers within one season:
// "S1E1-3, S1E5". Runs form only from strictly consecutive numbers; they
// never cross a season boundary. When padded is true, season and number are
// zero-padded to two digits. Empty input yields an empty string.
//
// The input order doesn't matter and the slice is never modified.
func FormatRanges(refs []Ref, padded bool) string {
	if len(refs) == 0 {
		return ""
	}

	sorted := slices.Clone(refs)
	slices.SortFunc(sorted, func(a, b Ref) int {
		if a.Season != b.Season {
			return cmp.Compare(a.Season, b.Season)
		}
		return cmp.Compare(a.Number, b.Number)
	})

	single, rangeEnd := "S%dE%d", "-%d"
	if padded {
		single, rangeEnd = "S%02dE%02d", "-%02d"
	}

	var sb strings.Builder
	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i].Season == sorted[i-1].Season && sorted[i].Number == sorted[i-1].Number+1 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(", ")
		}
		first, last := sorted[start], sorted[i-1]
		fmt.Fprintf(&sb, single, first.Season, first.Number)
		if last.Number > first.Number {
			fmt.Fprintf(&sb, rangeEnd, last.Number)
		}
		start = i
	}
	return sb.String()
}
