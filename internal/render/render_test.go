// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package render

import (
	"cmp"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.astrophena.name/tvfeed/internal/episode"
	"go.astrophena.name/tvfeed/internal/show"
	"go.astrophena.name/tvfeed/internal/testutil"
)

var update = flag.Bool("update", false, "update golden files")

type fixture struct {
	Date    string      `json:"date"`
	Country string      `json:"country"`
	Sort    string      `json:"sort"`
	Shows   []show.Show `json:"shows"`
}

func TestBuildGolden(t *testing.T) {
	testutil.RunGolden(t, filepath.Join("testdata", "*.json"), func(t *testing.T, match string) []byte {
		b, err := os.ReadFile(match)
		if err != nil {
			t.Fatal(err)
		}
		f := testutil.UnmarshalJSON[fixture](t, b)
		mode, err := show.ParseSortMode(cmp.Or(f.Sort, "name"))
		if err != nil {
			t.Fatal(err)
		}
		d := &Digest{
			Date:    f.Date,
			Country: f.Country,
			Groups:  show.GroupByNetwork(f.Shows),
			Sort:    mode,
		}

		var sb strings.Builder
		sb.WriteString("-- text --\n")
		sb.WriteString(Build(d, Text{}))
		sb.WriteString("-- html --\n")
		sb.WriteString(Build(d, HTML{}))
		return []byte(sb.String())
	}, *update)
}

func TestEntries(t *testing.T) {
	t.Parallel()

	group := []show.Show{
		{ID: 42, Name: "Chicago Fire", Airtime: "21:00", Season: 12, Number: 9},
		{ID: 7, Name: "Evening Quiz", Airtime: "19:00", Season: 3, Number: 1},
		{ID: 42, Name: "Chicago Fire", Airtime: "22:00", Season: 12, Number: 10},
		{Name: "Local Sports", Airtime: "23:00", Season: 1, Number: 4},
		{Name: "Local Sports", Airtime: "23:30", Season: 1, Number: 5},
		{Name: "Night Owl Cinema", Season: 2, Number: 2},
	}

	entries := Entries(group, show.SortByTime)

	var names []string
	for _, e := range entries {
		names = append(names, e.Show.Name)
	}
	// Entries take the airtime of their first occurrence; shows without a
	// parseable airtime go last.
	testutil.AssertEqual(t, names, []string{"Evening Quiz", "Chicago Fire", "Local Sports", "Night Owl Cinema"})

	testutil.AssertEqual(t, entries[1].Episodes, []episode.Ref{
		{Season: 12, Number: 9},
		{Season: 12, Number: 10},
	})
	testutil.AssertEqual(t, entries[2].Episodes, []episode.Ref{
		{Season: 1, Number: 4},
		{Season: 1, Number: 5},
	})
	// The merged entry keeps the first occurrence's airtime.
	testutil.AssertEqual(t, entries[1].Show.Airtime, "21:00")
}

func TestEntriesZeroIDDoesNotMergeDistinctNames(t *testing.T) {
	t.Parallel()

	group := []show.Show{
		{Name: "Morning Block", Season: 1, Number: 1},
		{Name: "Afternoon Block", Season: 1, Number: 1},
	}
	entries := Entries(group, show.SortByName)
	testutil.AssertEqual(t, len(entries), 2)
}

type headerOnly struct{}

func (headerOnly) Header(d *Digest) string                        { return "header" }
func (headerOnly) Content(network string, entries []Entry) string { return network }
func (headerOnly) Footer(d *Digest) string                        { return "" }

func TestSectionsSkipsEmptyFooter(t *testing.T) {
	t.Parallel()

	d := &Digest{
		Date: "2026-01-15",
		Groups: show.GroupByNetwork([]show.Show{
			{ID: 1, Name: "A", Network: "ABC"},
			{ID: 2, Name: "B", Network: "CBS"},
		}),
	}
	testutil.AssertEqual(t, Sections(d, headerOnly{}), []string{"header", "ABC", "CBS"})
}

func TestBuildEndsWithSingleNewline(t *testing.T) {
	t.Parallel()

	got := Build(&Digest{Date: "2026-01-15"}, Text{})
	if !strings.HasSuffix(got, ".\n") || strings.HasSuffix(got, "\n\n") {
		t.Fatalf("got %q", got)
	}
}
