// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package filter

import (
	"testing"

	"go.astrophena.name/tvfeed/internal/show"
	"go.astrophena.name/tvfeed/internal/testutil"
)

var testShows = []show.Show{
	{ID: 1, Name: "General Hospital", Type: "Scripted", Language: "English", Genres: []string{"Drama"}, Network: "ABC", Airtime: "15:00"},
	{ID: 2, Name: "The Young and the Restless", Type: "Scripted", Language: "English", Genres: []string{"Drama", "Romance"}, Network: "CBS", Airtime: "12:30"},
	{ID: 3, Name: "Nightly News", Type: "News", Language: "English", Genres: []string{}, Network: "NBC", Airtime: "18:30"},
	{ID: 4, Name: "Big Brother", Type: "Reality", Language: "English", Genres: []string{}, Network: "CBS", Airtime: "20:00"},
	{ID: 5, Name: "Tagesschau", Type: "News", Language: "German", Genres: []string{}, Network: "ARD", Airtime: "20:00"},
	// No language, no airtime.
	{ID: 6, Name: "Mystery Stream", Type: "Scripted", Genres: []string{"Horror"}, Network: "Shudder"},
}

func names(shows []show.Show) []string {
	out := make([]string, 0, len(shows))
	for _, s := range shows {
		out = append(out, s.Name)
	}
	return out
}

func TestApply(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		opts Options
		want []string
	}{
		"identity": {
			opts: Options{},
			want: names(testShows),
		},
		"type": {
			opts: Options{Types: []string{"news"}},
			want: []string{"Nightly News", "Tagesschau"},
		},
		"network": {
			opts: Options{Networks: []string{"cbs"}},
			want: []string{"The Young and the Restless", "Big Brother"},
		},
		"genre matches any of the show's genres": {
			opts: Options{Genres: []string{"ROMANCE", "horror"}},
			want: []string{"The Young and the Restless", "Mystery Stream"},
		},
		"language": {
			opts: Options{Languages: []string{"german"}},
			want: []string{"Tagesschau"},
		},
		"absent language fails an active language filter": {
			opts: Options{Languages: []string{"English", "German"}},
			want: []string{"General Hospital", "The Young and the Restless", "Nightly News", "Big Brother", "Tagesschau"},
		},
		"min airtime": {
			opts: Options{MinAirtime: "18:00"},
			want: []string{"Nightly News", "Big Brother", "Tagesschau"},
		},
		"min airtime keeps the boundary": {
			opts: Options{MinAirtime: "20:00"},
			want: []string{"Big Brother", "Tagesschau"},
		},
		"min airtime 00:00 still drops unparseable airtimes": {
			opts: Options{MinAirtime: "00:00"},
			want: []string{"General Hospital", "The Young and the Restless", "Nightly News", "Big Brother", "Tagesschau"},
		},
		"exclusion pattern": {
			opts: Options{Exclude: CompilePatterns([]string{"^The .*Restless$"})},
			want: []string{"General Hospital", "Nightly News", "Big Brother", "Tagesschau", "Mystery Stream"},
		},
		"predicates are conjunctive": {
			opts: Options{Types: []string{"News"}, MinAirtime: "19:00"},
			want: []string{"Tagesschau"},
		},
		"nothing matches": {
			opts: Options{Types: []string{"Documentary"}},
			want: []string{},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := Apply(testShows, tc.opts)
			testutil.AssertEqual(t, names(got), tc.want)
		})
	}
}

func TestApplyKeepsInput(t *testing.T) {
	t.Parallel()

	in := []show.Show{
		{Name: "a", Type: "News"},
		{Name: "b", Type: "Reality"},
	}
	Apply(in, Options{Types: []string{"Reality"}})
	testutil.AssertEqual(t, in[0].Name, "a")
	testutil.AssertEqual(t, in[1].Name, "b")
}

func TestCompilePattern(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		pattern string
		name    string
		want    bool
	}{
		"regex match":                 {"^The .*Restless$", "The Young and the Restless", true},
		"regex non-match":             {"^The .*Restless$", "General Hospital", false},
		"regex is case-insensitive":   {"restless$", "The Young and the RESTLESS", true},
		"regex substring":             {"Brother", "Big Brother", true},
		"bad regex becomes substring": {"movie (", "Movie (2024)", true},
		"substring case-insensitive":  {"MOVIE (", "the movie (uncut)", true},
		"substring non-match":         {"movie (", "General Hospital", false},
		"substring doesn't anchor":    {"(live", "Concert (live)", true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := CompilePattern(tc.pattern)
			if got := p.Match(tc.name); got != tc.want {
				t.Errorf("CompilePattern(%q).Match(%q) = %v, want %v", tc.pattern, tc.name, got, tc.want)
			}
		})
	}
}

func TestPatternString(t *testing.T) {
	t.Parallel()

	testutil.AssertEqual(t, CompilePattern("^The .*Restless$").String(), "^The .*Restless$")
	testutil.AssertEqual(t, CompilePattern("movie (").String(), "movie (")
}
