// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package show

import (
	"errors"
	"testing"

	"go.astrophena.name/tvfeed/internal/testutil"
)

func TestNormalizeNetworkShape(t *testing.T) {
	t.Parallel()

	item := testutil.UnmarshalJSON[map[string]any](t, []byte(`{
		"id": 1,
		"season": "2",
		"number": "05",
		"airtime": "20:00",
		"show": {
			"id": 1,
			"name": "X",
			"type": "Scripted",
			"network": {"name": "ABC"}
		}
	}`))

	got, err := Normalize(item)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got, Show{
		ID:      1,
		Name:    "X",
		Type:    "Scripted",
		Genres:  []string{},
		Network: "ABC",
		Airtime: "20:00",
		Season:  2,
		Number:  5,
	})
}

func TestNormalizeWebShape(t *testing.T) {
	t.Parallel()

	item := testutil.UnmarshalJSON[map[string]any](t, []byte(`{
		"id": 2184,
		"season": 3,
		"number": 7,
		"airtime": "",
		"_embedded": {
			"show": {
				"id": 527,
				"name": "Slow Horses",
				"type": "Scripted",
				"language": "English",
				"genres": ["Drama", "Thriller"],
				"webChannel": {"name": "Apple TV+"},
				"summary": "<p>Spies.</p>"
			}
		}
	}`))

	got, err := Normalize(item)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got, Show{
		ID:       527,
		Name:     "Slow Horses",
		Type:     "Scripted",
		Language: "English",
		Genres:   []string{"Drama", "Thriller"},
		Network:  "Apple TV+",
		Summary:  "<p>Spies.</p>",
		Season:   3,
		Number:   7,
	})
}

func TestNormalizeDefaults(t *testing.T) {
	t.Parallel()

	// A bare nested show object: every field falls back.
	got, err := Normalize(map[string]any{"show": map[string]any{}})
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got, Show{
		Name:    "Unknown Show",
		Type:    "unknown",
		Genres:  []string{},
		Network: "Unknown Network",
	})
}

func TestNormalizeNoShow(t *testing.T) {
	t.Parallel()

	cases := map[string]map[string]any{
		"empty item":      {},
		"airtime only":    {"airtime": "20:00"},
		"null show":       {"show": nil},
		"non-object show": {"show": "yes"},
		"empty embedded":  {"_embedded": map[string]any{}},
	}
	for name, item := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Normalize(item); !errors.Is(err, errNoShow) {
				t.Fatalf("Normalize(%v) error = %v, want errNoShow", item, err)
			}
		})
	}
}

func TestNormalizeShapeDetectionOrder(t *testing.T) {
	t.Parallel()

	// When both layouts are present, the embedded show wins: shape detection
	// runs before extraction.
	item := map[string]any{
		"show": map[string]any{"name": "network one"},
		"_embedded": map[string]any{
			"show": map[string]any{"name": "web one"},
		},
	}
	got, err := Normalize(item)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got.Name, "web one")
}

func TestNormalizeCoercion(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		season any
		want   int
	}{
		"number":             {season: 4.0, want: 4},
		"numeric string":     {season: "4", want: 4},
		"padded string":      {season: "04", want: 4},
		"non-numeric string": {season: "next", want: 0},
		"partially numeric":  {season: "4x", want: 0},
		"null":               {season: nil, want: 0},
		"missing":            {want: 0},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			item := map[string]any{"show": map[string]any{"name": "X"}}
			if tc.season != nil {
				item["season"] = tc.season
			}
			got, err := Normalize(item)
			if err != nil {
				t.Fatal(err)
			}
			testutil.AssertEqual(t, got.Season, tc.want)
		})
	}
}

func TestNetworkName(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		nested map[string]any
		want   string
	}{
		"broadcast network": {
			nested: map[string]any{"network": map[string]any{"name": "ABC"}},
			want:   "ABC",
		},
		"broadcast network with country": {
			nested: map[string]any{"network": map[string]any{
				"name":    "BBC One",
				"country": map[string]any{"name": "United Kingdom", "code": "GB"},
			}},
			want: "BBC One (GB)",
		},
		"web channel": {
			nested: map[string]any{"webChannel": map[string]any{"name": "Netflix"}},
			want:   "Netflix",
		},
		"web channel wins over empty network": {
			nested: map[string]any{
				"network":    map[string]any{"name": ""},
				"webChannel": map[string]any{"name": "Netflix"},
			},
			want: "Netflix",
		},
		"network wins over web channel": {
			nested: map[string]any{
				"network":    map[string]any{"name": "ABC"},
				"webChannel": map[string]any{"name": "Netflix"},
			},
			want: "ABC",
		},
		"neither": {
			nested: map[string]any{},
			want:   "Unknown Network",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, networkName(tc.nested), tc.want)
		})
	}
}

func TestNormalizeAll(t *testing.T) {
	t.Parallel()

	items := []map[string]any{
		{"show": map[string]any{"name": "first"}},
		{"no": "show"},
		{"show": map[string]any{"name": "second"}},
	}

	got := NormalizeAll(items)
	testutil.AssertEqual(t, len(got), 2)
	testutil.AssertEqual(t, got[0].Name, "first")
	testutil.AssertEqual(t, got[1].Name, "second")
}
