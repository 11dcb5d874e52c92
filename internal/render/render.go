// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package render turns grouped schedule entries into a digest document.
package render

import (
	"fmt"
	"html"
	"slices"
	"strconv"
	"strings"

	"go.astrophena.name/tvfeed/internal/episode"
	"go.astrophena.name/tvfeed/internal/show"
)

// Digest is the assembled input of a render pass.
type Digest struct {
	// Date is the schedule day in YYYY-MM-DD form.
	Date string
	// Country is the configured country code, "" when unset.
	Country string
	// Groups holds the day's shows, bucketed by network.
	Groups show.NetworkGroups
	// Sort selects the entry ordering within each network section.
	Sort show.SortMode
}

// Episodes returns the total number of scheduled episodes in d.
func (d *Digest) Episodes() int {
	n := 0
	for _, g := range d.Groups {
		n += len(g)
	}
	return n
}

// Entry is one show within a network section, carrying every episode of it
// airing that day.
type Entry struct {
	Show     show.Show
	Episodes []episode.Ref
}

// Formatter renders the parts of a digest document. [Build] drives it, so
// network ordering, entry ordering and episode merging are the same for
// every format.
type Formatter interface {
	// Header renders the opening of the document.
	Header(d *Digest) string
	// Content renders one network section.
	Content(network string, entries []Entry) string
	// Footer renders the closing of the document. It may return "".
	Footer(d *Digest) string
}

// Build renders d with f into one document ending with a newline. Network
// sections appear in locale-aware name order, separated by blank lines.
func Build(d *Digest, f Formatter) string {
	return strings.Join(Sections(d, f), "\n\n") + "\n"
}

// Sections renders d with f as separate parts: the header, one part per
// network and, unless it is empty, the footer. Delivery code can pack parts
// into size-limited messages without splitting formatted text itself.
func Sections(d *Digest, f Formatter) []string {
	parts := []string{f.Header(d)}
	for _, network := range d.Groups.Networks() {
		parts = append(parts, f.Content(network, Entries(d.Groups[network], d.Sort)))
	}
	if footer := f.Footer(d); footer != "" {
		parts = append(parts, footer)
	}
	return parts
}

// Entries merges the episodes of each distinct show in group and orders the
// result according to mode. Two items refer to the same show when their IDs
// match; items with the zero ID fall back to name matching. An entry keeps
// the Show of its first occurrence and collects episode refs in encounter
// order, leaving range collapsing to the formatter.
func Entries(group []show.Show, mode show.SortMode) []Entry {
	var (
		entries []Entry
		index   = make(map[string]int)
	)
	for _, s := range group {
		key := "id:" + strconv.Itoa(s.ID)
		if s.ID == 0 {
			key = "name:" + s.Name
		}
		ref := episode.Ref{Season: s.Season, Number: s.Number}
		if i, ok := index[key]; ok {
			entries[i].Episodes = append(entries[i].Episodes, ref)
			continue
		}
		index[key] = len(entries)
		entries = append(entries, Entry{Show: s, Episodes: []episode.Ref{ref}})
	}
	cmpShow := show.Compare(mode)
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmpShow(a.Show, b.Show)
	})
	return entries
}

// Text renders a plain text digest.
type Text struct{}

func (Text) Header(d *Digest) string {
	h := "TV schedule for " + d.Date
	if d.Country != "" {
		h += " (" + d.Country + ")"
	}
	return h
}

func (Text) Content(network string, entries []Entry) string {
	var sb strings.Builder
	sb.WriteString(network + ":")
	for _, e := range entries {
		sb.WriteString("\n- " + e.Show.Name)
		if ranges := episode.FormatRanges(e.Episodes, false); ranges != "" {
			sb.WriteString(" (" + ranges + ")")
		}
		if e.Show.Airtime != "" {
			sb.WriteString(" at " + e.Show.Airtime)
		}
	}
	return sb.String()
}

func (Text) Footer(d *Digest) string {
	return fmt.Sprintf("%d episode(s) across %d network(s).", d.Episodes(), len(d.Groups))
}

// HTML renders a digest in the HTML subset Telegram accepts: plain lines
// with <b> and <i> markup and no block elements. Episode numbers are zero
// padded so columns line up in monospace clients.
type HTML struct{}

func (HTML) Header(d *Digest) string {
	return "<b>" + html.EscapeString(Text{}.Header(d)) + "</b>"
}

func (HTML) Content(network string, entries []Entry) string {
	var sb strings.Builder
	sb.WriteString("<b>" + html.EscapeString(network) + "</b>")
	for _, e := range entries {
		sb.WriteString("\n• " + html.EscapeString(e.Show.Name))
		if ranges := episode.FormatRanges(e.Episodes, true); ranges != "" {
			sb.WriteString(" (" + ranges + ")")
		}
		if e.Show.Airtime != "" {
			sb.WriteString(" at " + html.EscapeString(e.Show.Airtime))
		}
	}
	return sb.String()
}

func (HTML) Footer(d *Digest) string {
	return fmt.Sprintf("<i>%d episode(s) across %d network(s).</i>", d.Episodes(), len(d.Groups))
}
