// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package show

import (
	"errors"
	"strconv"
)

// errNoShow is reported when a schedule item carries no nested show object.
var errNoShow = errors.New("show: schedule item has no show object")

// shapeKind discriminates the two upstream schedule item layouts.
type shapeKind int

const (
	// networkShape items carry the nested show object under "show".
	networkShape shapeKind = iota
	// webShape items carry it under "_embedded.show".
	webShape
)

// classified is a schedule item with its shape resolved and the nested show
// object extracted.
type classified struct {
	kind shapeKind
	item map[string]any
	show map[string]any
}

// classify resolves the shape of a raw schedule item. It runs before any
// field extraction: an item is web-shape iff it has an _embedded object with
// a show property, otherwise it's network-shape.
func classify(item map[string]any) (classified, error) {
	if emb, ok := item["_embedded"].(map[string]any); ok {
		if s, ok := emb["show"].(map[string]any); ok {
			return classified{kind: webShape, item: item, show: s}, nil
		}
	}
	if s, ok := item["show"].(map[string]any); ok {
		return classified{kind: networkShape, item: item, show: s}, nil
	}
	return classified{}, errNoShow
}

// Normalize converts a raw schedule item to a Show. It fails only when the
// item carries no nested show object at all; any other missing or malformed
// field falls back to its default.
func Normalize(item map[string]any) (Show, error) {
	c, err := classify(item)
	if err != nil {
		return Show{}, err
	}
	return Show{
		ID:       intField(c.show, "id"),
		Name:     stringField(c.show, "name", "Unknown Show"),
		Type:     stringField(c.show, "type", "unknown"),
		Language: stringField(c.show, "language", ""),
		Genres:   stringsField(c.show, "genres"),
		Network:  networkName(c.show),
		Summary:  stringField(c.show, "summary", ""),
		Airtime:  stringField(c.item, "airtime", ""),
		Season:   intField(c.item, "season"),
		Number:   intField(c.item, "number"),
	}, nil
}

// NormalizeAll converts a batch of raw schedule items, dropping the ones
// that can't be normalized and keeping the relative order of the rest.
func NormalizeAll(items []map[string]any) []Show {
	shows := make([]Show, 0, len(items))
	for _, item := range items {
		s, err := Normalize(item)
		if err != nil {
			continue
		}
		shows = append(shows, s)
	}
	return shows
}

// networkName resolves the display name of the show's distribution channel:
// the broadcast network name (with a parenthetical country code when the
// network carries one), then the web channel name, then "Unknown Network".
func networkName(nested map[string]any) string {
	if netw, ok := nested["network"].(map[string]any); ok {
		if name := stringField(netw, "name", ""); name != "" {
			if country, ok := netw["country"].(map[string]any); ok {
				if code := stringField(country, "code", ""); code != "" {
					return name + " (" + code + ")"
				}
			}
			return name
		}
	}
	if ch, ok := nested["webChannel"].(map[string]any); ok {
		if name := stringField(ch, "name", ""); name != "" {
			return name
		}
	}
	return "Unknown Network"
}

// stringField reads a string field, substituting def when the value is
// missing, null, empty or not a string.
func stringField(m map[string]any, key, def string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return def
}

// intField reads a numeric field, coercing numeric strings with a strict
// base-10 parse. Anything unparseable becomes 0.
func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// stringsField reads an array-of-strings field, skipping members that aren't
// strings. It always returns a non-nil slice.
func stringsField(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
