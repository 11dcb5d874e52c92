// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package tvmaze

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"go.astrophena.name/tvfeed/internal/request"
	"go.astrophena.name/tvfeed/internal/testutil"
)

const scheduleJSON = `[
	{
		"airtime": "20:00",
		"season": 3,
		"number": 14,
		"show": {
			"id": 118,
			"name": "Chicago Med",
			"type": "Scripted",
			"network": {"name": "NBC", "country": {"code": "US"}}
		}
	},
	{
		"airdate": "2026-01-15",
		"_embedded": {
			"show": {"id": 44813, "name": "The Circle", "webChannel": {"name": "Netflix"}}
		}
	}
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
}

func TestSchedule(t *testing.T) {
	t.Parallel()

	var got url.URL
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = *r.URL
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(scheduleJSON))
	})

	items, err := c.Schedule(context.Background(), "2026-01-15", "US")
	if err != nil {
		t.Fatal(err)
	}

	testutil.AssertEqual(t, got.Path, "/schedule")
	testutil.AssertEqual(t, got.Query().Get("date"), "2026-01-15")
	testutil.AssertEqual(t, got.Query().Get("country"), "US")

	testutil.AssertEqual(t, len(items), 2)
	testutil.AssertEqual(t, items[0]["airtime"], "20:00")
	show, ok := items[0]["show"].(map[string]any)
	if !ok {
		t.Fatalf("items[0] has no show object: %v", items[0])
	}
	testutil.AssertEqual(t, show["name"], "Chicago Med")
}

func TestScheduleWithoutCountry(t *testing.T) {
	t.Parallel()

	var got url.URL
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = *r.URL
		w.Write([]byte(`[]`))
	})

	if _, err := c.Schedule(context.Background(), "2026-01-15", ""); err != nil {
		t.Fatal(err)
	}
	if _, ok := got.Query()["country"]; ok {
		t.Fatalf("country parameter sent: %q", got.RawQuery)
	}
}

func TestWebSchedule(t *testing.T) {
	t.Parallel()

	var got url.URL
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = *r.URL
		w.Write([]byte(scheduleJSON))
	})

	items, err := c.WebSchedule(context.Background(), "2026-01-15")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got.Path, "/schedule/web")
	testutil.AssertEqual(t, got.Query().Get("date"), "2026-01-15")
	testutil.AssertEqual(t, len(items), 2)
}

func TestScheduleError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "tea time", http.StatusTeapot)
	})

	_, err := c.Schedule(context.Background(), "2026-01-15", "US")
	if err == nil {
		t.Fatal("want an error")
	}
	var se *request.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error %v doesn't unwrap to StatusError", err)
	}
	testutil.AssertEqual(t, se.StatusCode, http.StatusTeapot)
}

func TestDefaultBaseURL(t *testing.T) {
	t.Parallel()
	c := &Client{}
	testutil.AssertEqual(t, c.baseURL(), "https://api.tvmaze.com")
}
