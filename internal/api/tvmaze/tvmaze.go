// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package tvmaze provides a minimal client for the TVmaze schedule API.
package tvmaze

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.astrophena.name/tvfeed/internal/request"
)

// Client talks to the TVmaze API. The zero value is usable and talks to
// https://api.tvmaze.com.
//
// Schedule items are returned raw: normalizing them into the internal show
// model is the caller's job.
type Client struct {
	// BaseURL overrides the API base URL. Used in tests.
	BaseURL string
	// HTTPClient is an optional HTTP client to use for requests.
	HTTPClient *http.Client
	// Scrubber is an optional strings.Replacer that scrubs unwanted data
	// from error messages.
	Scrubber *strings.Replacer
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return "https://api.tvmaze.com"
}

// Schedule fetches the broadcast schedule for a date in YYYY-MM-DD form.
// country is an ISO 3166-1 code; when empty, the API picks its default
// country.
func (c *Client) Schedule(ctx context.Context, date, country string) ([]map[string]any, error) {
	q := url.Values{"date": {date}}
	if country != "" {
		q.Set("country", country)
	}
	return c.get(ctx, "/schedule?"+q.Encode())
}

// WebSchedule fetches the schedule of web and streaming channels for a date
// in YYYY-MM-DD form. Unlike [Client.Schedule], it is not scoped to a
// country.
func (c *Client) WebSchedule(ctx context.Context, date string) ([]map[string]any, error) {
	q := url.Values{"date": {date}}
	return c.get(ctx, "/schedule/web?"+q.Encode())
}

func (c *Client) get(ctx context.Context, path string) ([]map[string]any, error) {
	return request.Make[[]map[string]any](ctx, request.Params{
		Method:     http.MethodGet,
		URL:        c.baseURL() + path,
		HTTPClient: c.HTTPClient,
		Scrubber:   c.Scrubber,
	})
}
