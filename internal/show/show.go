// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package show defines the normalized schedule entry model together with its
// grouping and ordering helpers.
package show

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Show is a single scheduled episode, normalized from a raw schedule item.
//
// Name, Type and Network are never empty: normalization substitutes sentinel
// values when the upstream source omits them. Language, Summary and Airtime
// use the empty string to mean "absent".
type Show struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Language string   `json:"language,omitempty"`
	Genres   []string `json:"genres"`
	Network  string   `json:"network"`
	Summary  string   `json:"summary,omitempty"`
	Airtime  string   `json:"airtime,omitempty"`
	Season   int      `json:"season"`
	Number   int      `json:"number"`
}

// SortMode selects the ordering of shows within a network group.
type SortMode int

const (
	// SortByName orders shows by name, using locale-aware comparison.
	SortByName SortMode = iota
	// SortByTime orders shows by airtime, earliest first. Shows without a
	// parseable airtime go last, keeping their relative order.
	SortByTime
)

// ParseSortMode parses a sort mode name, either "name" or "time".
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(s) {
	case "name":
		return SortByName, nil
	case "time":
		return SortByTime, nil
	}
	return 0, fmt.Errorf("unknown sort mode %q", s)
}

func (m SortMode) String() string {
	if m == SortByTime {
		return "time"
	}
	return "name"
}

// Sort returns a copy of shows ordered according to mode. The input slice is
// never modified.
func Sort(shows []Show, mode SortMode) []Show {
	sorted := slices.Clone(shows)
	slices.SortStableFunc(sorted, Compare(mode))
	return sorted
}

// Compare returns a comparison function ordering shows according to mode.
// The time comparator reports shows with unparseable airtimes as greater
// than any parseable one and equal to each other, so a stable sort keeps
// them last in their relative order.
func Compare(mode SortMode) func(a, b Show) int {
	if mode == SortByTime {
		return func(a, b Show) int {
			am, bm := AirtimeMinutes(a.Airtime), AirtimeMinutes(b.Airtime)
			switch {
			case am == bm:
				return 0
			case am == -1:
				return 1
			case bm == -1:
				return -1
			}
			return am - bm
		}
	}
	c := collate.New(language.Und)
	return func(a, b Show) int {
		return c.CompareString(a.Name, b.Name)
	}
}

// NetworkGroups maps a network name to the shows airing on it.
type NetworkGroups map[string][]Show

// GroupByNetwork buckets shows by their network name. The relative order of
// shows within each group follows the input.
func GroupByNetwork(shows []Show) NetworkGroups {
	groups := make(NetworkGroups)
	for _, s := range shows {
		groups[s.Network] = append(groups[s.Network], s)
	}
	return groups
}

// Networks returns the group keys in locale-aware ascending order.
func (g NetworkGroups) Networks() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	collate.New(language.Und).SortStrings(names)
	return names
}

// AirtimeMinutes converts a time-of-day string to minutes since midnight.
// It accepts the 24-hour H:MM and HH:MM forms and the 12-hour form with an
// AM/PM suffix. It returns -1 when s can't be parsed.
func AirtimeMinutes(s string) int {
	t := strings.TrimSpace(strings.ToUpper(s))

	var meridiem string
	for _, m := range []string{"AM", "PM"} {
		if rest, ok := strings.CutSuffix(t, m); ok {
			meridiem = m
			t = strings.TrimSpace(rest)
			break
		}
	}

	hh, mm, ok := strings.Cut(t, ":")
	if !ok || len(mm) != 2 {
		return -1
	}
	h, ok := parseDigits(hh)
	if !ok {
		return -1
	}
	m, ok := parseDigits(mm)
	if !ok || m > 59 {
		return -1
	}

	switch meridiem {
	case "AM":
		if h < 1 || h > 12 {
			return -1
		}
		if h == 12 {
			h = 0
		}
	case "PM":
		if h < 1 || h > 12 {
			return -1
		}
		if h < 12 {
			h += 12
		}
	default:
		if h > 23 {
			return -1
		}
	}

	return h*60 + m
}

// parseDigits parses a one or two digit decimal number. Unlike
// [strconv.Atoi], it rejects signs and whitespace.
func parseDigits(s string) (int, bool) {
	if len(s) == 0 || len(s) > 2 {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
