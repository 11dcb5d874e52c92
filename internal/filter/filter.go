// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package filter selects shows matching a configured predicate set.
package filter

import (
	"strings"

	"go.astrophena.name/tvfeed/internal/show"
	"go.astrophena.name/tvfeed/internal/util/set"
)

// Options configures [Apply]. The predicates are conjunctive: a show must
// satisfy every active one. An empty set for a dimension means no
// restriction on that dimension.
type Options struct {
	// Types, Networks and Languages are matched against the show's
	// corresponding field by case-insensitive equality. Genres matches when at
	// least one of the show's genres is in the set.
	Types     []string
	Networks  []string
	Genres    []string
	Languages []string
	// MinAirtime is an HH:MM threshold. When set, shows airing earlier are
	// dropped, and so are shows without a parseable airtime, even at "00:00".
	MinAirtime string
	// Exclude rejects shows whose name matches any pattern.
	Exclude []Pattern
	// Rule is an optional Starlark rule set applied after the static
	// predicates. Nil disables it.
	Rule *Rule
}

// Apply returns the shows satisfying every active predicate in opts. The
// input slice is never modified; the result is always a fresh slice.
func Apply(shows []show.Show, opts Options) []show.Show {
	var (
		types     = lowerSet(opts.Types)
		networks  = lowerSet(opts.Networks)
		genres    = lowerSet(opts.Genres)
		languages = lowerSet(opts.Languages)

		minAirtime = -1
	)
	if opts.MinAirtime != "" {
		minAirtime = show.AirtimeMinutes(opts.MinAirtime)
	}

	keep := func(s show.Show) bool {
		if types.Len() > 0 && !types.Has(strings.ToLower(s.Type)) {
			return false
		}
		if networks.Len() > 0 && !networks.Has(strings.ToLower(s.Network)) {
			return false
		}
		if genres.Len() > 0 && !hasAny(s.Genres, genres) {
			return false
		}
		// A show without a language never passes an active language filter.
		if languages.Len() > 0 && !languages.Has(strings.ToLower(s.Language)) {
			return false
		}
		if opts.MinAirtime != "" {
			m := show.AirtimeMinutes(s.Airtime)
			if m == -1 || m < minAirtime {
				return false
			}
		}
		for _, p := range opts.Exclude {
			if p.Match(s.Name) {
				return false
			}
		}
		return true
	}

	kept := make([]show.Show, 0, len(shows))
	for _, s := range shows {
		if !keep(s) {
			continue
		}
		if opts.Rule != nil && !opts.Rule.Keep(s) {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

func lowerSet(list []string) set.Set[string] {
	s := set.New[string](len(list))
	for _, v := range list {
		s.Add(strings.ToLower(v))
	}
	return s
}

func hasAny(values []string, s set.Set[string]) bool {
	for _, v := range values {
		if s.Has(strings.ToLower(v)) {
			return true
		}
	}
	return false
}
