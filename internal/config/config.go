// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package config resolves the options governing a pipeline run from layered
// sources: built-in defaults, a JSON config file, environment variables and
// explicit overrides. Later sources win field by field; list values replace
// wholesale, they never concatenate.
package config

import (
	"cmp"
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.astrophena.name/tvfeed/internal/filter"
	"go.astrophena.name/tvfeed/internal/logger"
	"go.astrophena.name/tvfeed/internal/show"
)

const (
	defaultMinAirtime       = "18:00"
	defaultNotificationTime = "09:00"
)

// Telegram holds the delivery channel credentials.
type Telegram struct {
	Token  string `json:"token"`
	ChatID string `json:"chatID"`
}

// Config is the fully resolved option set governing one pipeline run.
type Config struct {
	// Date is the schedule day in YYYY-MM-DD form.
	Date string
	// Country is an ISO 3166-1 country code passed to the schedule source.
	Country string
	// Timezone is the configured IANA timezone name, "" when unset.
	Timezone string
	// Location is the resolved timezone used for date and notification time
	// computation. Never nil.
	Location *time.Location

	Types     []string
	Networks  []string
	Genres    []string
	Languages []string

	// MinAirtime is the HH:MM threshold for the airtime filter.
	MinAirtime string
	// NotificationTime is the HH:MM local wall time at which scheduled
	// deliveries fire.
	NotificationTime string
	// Exclude holds the compiled show name exclusion patterns.
	Exclude []filter.Pattern
	// Rules is the path of an optional Starlark rules file.
	Rules string

	Telegram Telegram
	// Contact is an operations contact mentioned in error notifications.
	Contact string
}

// HasTelegram reports whether delivery credentials are configured.
func (c *Config) HasTelegram() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != ""
}

// FilterOptions returns the filter configuration carried by c. rule may be
// nil.
func (c *Config) FilterOptions(rule *filter.Rule) filter.Options {
	return filter.Options{
		Types:      c.Types,
		Networks:   c.Networks,
		Genres:     c.Genres,
		Languages:  c.Languages,
		MinAirtime: c.MinAirtime,
		Exclude:    c.Exclude,
		Rule:       rule,
	}
}

// Layer is one partial configuration source. Empty scalars and nil slices
// mean "not set at this layer". Resolve folds layers lowest priority first.
type Layer struct {
	Date             string
	Country          string
	Timezone         string
	Types            []string
	Networks         []string
	Genres           []string
	Languages        []string
	MinAirtime       string
	NotificationTime string
	ShowNameFilter   []string
	Rules            string
	Token            string
	ChatID           string
	Contact          string
}

// Params configures [Resolve].
type Params struct {
	// Path is the config file location. Empty means TVFEED_CONFIG from the
	// environment, then [DefaultPath].
	Path string
	// Getenv reads an environment variable. Nil means the process
	// environment.
	Getenv func(string) string
	// Logf is used to warn about unusable configuration sources. Nil means
	// log.Printf.
	Logf logger.Logf
	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
	// Overrides is the highest priority layer, typically built from
	// command-line flags.
	Overrides Layer
}

// Resolve produces the configuration for one run.
//
// Config sources never fail the run: an unreadable config file, a file with
// invalid JSON, an unknown timezone and a malformed time threshold all log a
// warning and fall back. A file missing from an explicitly configured path
// warns too; a missing file at the default location is silently skipped.
func Resolve(p Params) *Config {
	getenv := p.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	logf := p.Logf
	if logf == nil {
		logf = log.Printf
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}

	path := cmp.Or(p.Path, getenv("TVFEED_CONFIG"))
	explicit := path != ""
	if !explicit {
		path = DefaultPath(getenv)
	}
	merged := fold(defaults(), fileLayer(path, explicit, logf), envLayer(getenv), p.Overrides)

	loc := time.Local
	if merged.Timezone != "" {
		l, err := time.LoadLocation(merged.Timezone)
		if err != nil {
			logf("Invalid timezone %q, falling back to local time: %v", merged.Timezone, err)
			merged.Timezone = ""
		} else {
			loc = l
		}
	}

	if show.AirtimeMinutes(merged.MinAirtime) == -1 {
		logf("Invalid minimum airtime %q, using %q.", merged.MinAirtime, defaultMinAirtime)
		merged.MinAirtime = defaultMinAirtime
	}
	if show.AirtimeMinutes(merged.NotificationTime) == -1 {
		logf("Invalid notification time %q, using %q.", merged.NotificationTime, defaultNotificationTime)
		merged.NotificationTime = defaultNotificationTime
	}

	date := merged.Date
	if date == "" {
		date = now().In(loc).Format(time.DateOnly)
	}

	return &Config{
		Date:             date,
		Country:          merged.Country,
		Timezone:         merged.Timezone,
		Location:         loc,
		Types:            merged.Types,
		Networks:         merged.Networks,
		Genres:           merged.Genres,
		Languages:        merged.Languages,
		MinAirtime:       merged.MinAirtime,
		NotificationTime: merged.NotificationTime,
		Exclude:          filter.CompilePatterns(merged.ShowNameFilter),
		Rules:            merged.Rules,
		Telegram: Telegram{
			Token:  merged.Token,
			ChatID: merged.ChatID,
		},
		Contact: merged.Contact,
	}
}

// DefaultPath returns the default config file location:
// $XDG_CONFIG_HOME/tvfeed/config.json, falling back to
// ~/.config/tvfeed/config.json.
func DefaultPath(getenv func(string) string) string {
	dir := getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "tvfeed", "config.json")
}

func defaults() Layer {
	return Layer{
		Types:            []string{},
		Networks:         []string{},
		Genres:           []string{},
		Languages:        []string{},
		ShowNameFilter:   []string{},
		MinAirtime:       defaultMinAirtime,
		NotificationTime: defaultNotificationTime,
	}
}

func envLayer(getenv func(string) string) Layer {
	return Layer{
		Country:          getenv("TVFEED_COUNTRY"),
		Timezone:         getenv("TVFEED_TIMEZONE"),
		MinAirtime:       getenv("TVFEED_MIN_AIRTIME"),
		NotificationTime: getenv("TVFEED_NOTIFICATION_TIME"),
		Rules:            getenv("TVFEED_RULES"),
		Token:            getenv("TELEGRAM_TOKEN"),
		ChatID:           getenv("TVFEED_CHAT_ID"),
	}
}

// fileConfig is the JSON layout of the config file.
type fileConfig struct {
	Country          string   `json:"country"`
	Timezone         string   `json:"timezone"`
	Types            []string `json:"types"`
	Networks         []string `json:"networks"`
	Genres           []string `json:"genres"`
	Languages        []string `json:"languages"`
	MinAirtime       string   `json:"minAirtime"`
	NotificationTime string   `json:"notificationTime"`
	ShowNameFilter   []string `json:"showNameFilter"`
	Rules            string   `json:"rules"`
	Telegram         Telegram `json:"telegram"`
	Contact          string   `json:"contact"`
}

// fileLayer reads the config file at path. A file missing from the default
// location is fine and stays quiet; every other problem warns via logf and
// falls back to an empty layer.
func fileLayer(path string, explicit bool, logf logger.Logf) Layer {
	if path == "" {
		return Layer{}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logf("Unable to read config file %s: %v", path, err)
		} else if explicit {
			logf("Config file %s not found, using defaults.", path)
		}
		return Layer{}
	}
	var fc fileConfig
	if err := json.Unmarshal(b, &fc); err != nil {
		logf("Invalid config file %s: %v", path, err)
		return Layer{}
	}
	return Layer{
		Country:          fc.Country,
		Timezone:         fc.Timezone,
		Types:            fc.Types,
		Networks:         fc.Networks,
		Genres:           fc.Genres,
		Languages:        fc.Languages,
		MinAirtime:       fc.MinAirtime,
		NotificationTime: fc.NotificationTime,
		ShowNameFilter:   fc.ShowNameFilter,
		Rules:            fc.Rules,
		Token:            fc.Telegram.Token,
		ChatID:           fc.Telegram.ChatID,
		Contact:          fc.Contact,
	}
}

// fold merges layers left to right with a pure field-by-field merge: a
// non-empty scalar or non-nil slice in a later layer replaces the value from
// earlier ones.
func fold(layers ...Layer) Layer {
	var out Layer
	for _, l := range layers {
		out = merge(out, l)
	}
	return out
}

func merge(a, b Layer) Layer {
	return Layer{
		Date:             cmp.Or(b.Date, a.Date),
		Country:          cmp.Or(b.Country, a.Country),
		Timezone:         cmp.Or(b.Timezone, a.Timezone),
		Types:            orSlice(b.Types, a.Types),
		Networks:         orSlice(b.Networks, a.Networks),
		Genres:           orSlice(b.Genres, a.Genres),
		Languages:        orSlice(b.Languages, a.Languages),
		MinAirtime:       cmp.Or(b.MinAirtime, a.MinAirtime),
		NotificationTime: cmp.Or(b.NotificationTime, a.NotificationTime),
		ShowNameFilter:   orSlice(b.ShowNameFilter, a.ShowNameFilter),
		Rules:            cmp.Or(b.Rules, a.Rules),
		Token:            cmp.Or(b.Token, a.Token),
		ChatID:           cmp.Or(b.ChatID, a.ChatID),
		Contact:          cmp.Or(b.Contact, a.Contact),
	}
}

func orSlice(b, a []string) []string {
	if b != nil {
		return b
	}
	return a
}
