// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package filter

import (
	"regexp"
	"strings"
)

// Pattern is a show name exclusion pattern: either a compiled
// case-insensitive regular expression or, when compilation fails, a literal
// substring matched case-insensitively.
//
// Patterns are compiled once at configuration resolution, not per show.
type Pattern struct {
	re      *regexp.Regexp
	literal string
}

// CompilePattern builds a Pattern from s. A string that doesn't compile as a
// regular expression degrades to a substring pattern, never an error.
func CompilePattern(s string) Pattern {
	re, err := regexp.Compile("(?i)" + s)
	if err != nil {
		return Pattern{literal: strings.ToLower(s)}
	}
	return Pattern{re: re}
}

// CompilePatterns builds a Pattern from every element of list.
func CompilePatterns(list []string) []Pattern {
	if len(list) == 0 {
		return nil
	}
	patterns := make([]Pattern, 0, len(list))
	for _, s := range list {
		patterns = append(patterns, CompilePattern(s))
	}
	return patterns
}

// Match reports whether name matches the pattern.
func (p Pattern) Match(name string) bool {
	if p.re != nil {
		return p.re.MatchString(name)
	}
	return strings.Contains(strings.ToLower(name), p.literal)
}

// String returns the pattern source text.
func (p Pattern) String() string {
	if p.re != nil {
		return strings.TrimPrefix(p.re.String(), "(?i)")
	}
	return p.literal
}
