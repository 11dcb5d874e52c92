// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"html"
	"io"
	"log"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.astrophena.name/tvfeed/internal/api/telegram"
	"go.astrophena.name/tvfeed/internal/api/tvmaze"
	"go.astrophena.name/tvfeed/internal/cli"
	"go.astrophena.name/tvfeed/internal/config"
	"go.astrophena.name/tvfeed/internal/filter"
	"go.astrophena.name/tvfeed/internal/httplogger"
	"go.astrophena.name/tvfeed/internal/logger"
	"go.astrophena.name/tvfeed/internal/render"
	"go.astrophena.name/tvfeed/internal/request"
	"go.astrophena.name/tvfeed/internal/show"
	"go.astrophena.name/tvfeed/internal/util/syncx"
)

//go:embed error.tmpl
var errorTemplate string

var errNoTelegram = errors.New("telegram credentials are not configured")

func main() { cli.Main(new(fetcher)) }

func (f *fetcher) Flags(fs *flag.FlagSet) {
	fs.StringVar(&f.date, "date", "", "Build the digest for `date` (YYYY-MM-DD) instead of today.")
	fs.StringVar(&f.country, "country", "", "Fetch the broadcast schedule for `country` (ISO 3166-1 code).")
	fs.StringVar(&f.timezone, "timezone", "", "Compute the current date in `timezone` (IANA name).")
	fs.StringVar(&f.types, "types", "", "Keep only shows whose type is in the comma-separated `list`.")
	fs.StringVar(&f.networks, "networks", "", "Keep only shows airing on a network in the comma-separated `list`.")
	fs.StringVar(&f.genres, "genres", "", "Keep only shows with at least one genre from the comma-separated `list`.")
	fs.StringVar(&f.languages, "languages", "", "Keep only shows in a language from the comma-separated `list`.")
	fs.StringVar(&f.minAirtime, "min-airtime", "", "Drop shows airing before `time` (HH:MM).")
	fs.StringVar(&f.sortMode, "sort", "name", "Sort shows within a network by `order` (name or time).")
	fs.StringVar(&f.configPath, "config", "", "Read configuration from `path`.")
	fs.StringVar(&f.rulesPath, "rules", "", "Load Starlark filter rules from `path`.")
	fs.BoolVar(&f.jsonOut, "json", false, "Output the digest as JSON.")
	fs.BoolVar(&f.notify, "notify", false, "Deliver the digest to Telegram instead of printing it.")
	fs.StringVar(&f.serveAddr, "serve", "", "Run as a server on `addr`, delivering digests on schedule.")
	fs.BoolVar(&f.dry, "dry", false, "Enable dry-run mode: build the digest, but don't deliver it.")
	fs.BoolVar(&f.debug, "debug", false, "Log HTTP requests and expose debug endpoints in -serve mode.")
}

func (f *fetcher) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)

	f.init.Do(func() {
		f.doInit(ctx)
	})

	// Enable debug logging in dry-run and debug modes.
	if f.dry || f.debug {
		f.slogLevel.Set(slog.LevelDebug)
	}

	if f.date != "" {
		if _, err := time.Parse(time.DateOnly, f.date); err != nil {
			return fmt.Errorf("%w: -date must be in YYYY-MM-DD form", cli.ErrInvalidArgs)
		}
	}
	sort, err := show.ParseSortMode(f.sortMode)
	if err != nil {
		return fmt.Errorf("%w: %v", cli.ErrInvalidArgs, err)
	}
	f.sort = sort

	f.cfg = config.Resolve(config.Params{
		Path:   f.configPath,
		Getenv: env.Getenv,
		Logf:   f.logf,
		Now:    f.now,
		Overrides: config.Layer{
			Date:       f.date,
			Country:    f.country,
			Timezone:   f.timezone,
			Types:      splitList(f.types),
			Networks:   splitList(f.networks),
			Genres:     splitList(f.genres),
			Languages:  splitList(f.languages),
			MinAirtime: f.minAirtime,
			Rules:      f.rulesPath,
		},
	})

	if f.cfg.Telegram.Token != "" {
		f.scrubber = strings.NewReplacer(
			f.cfg.Telegram.Token, "[EXPUNGED]",
		)
	}
	f.tvmaze = &tvmaze.Client{HTTPClient: f.httpc, Scrubber: f.scrubber}
	f.telegram = telegram.New(telegram.Config{
		ChatID:     f.cfg.Telegram.ChatID,
		Token:      f.cfg.Telegram.Token,
		HTTPClient: f.httpc,
		Scrubber:   f.scrubber,
		Logger:     f.slog,
	})

	f.rule = nil
	if f.cfg.Rules != "" {
		rule, err := filter.LoadRules(f.cfg.Rules, nil, f.slog)
		if err != nil {
			return fmt.Errorf("loading rules from %s: %w", f.cfg.Rules, err)
		}
		f.rule = rule
	}

	switch {
	case f.serveAddr != "":
		return f.serve(ctx)
	case f.notify:
		if err := f.deliver(ctx, f.cfg.Date); err != nil {
			return f.errNotify(ctx, err)
		}
		return nil
	}
	return f.printDigest(ctx, env.Stdout)
}

type fetcher struct {
	init sync.Once

	// flags
	date       string
	country    string
	timezone   string
	types      string
	networks   string
	genres     string
	languages  string
	minAirtime string
	sortMode   string
	configPath string
	rulesPath  string
	jsonOut    bool
	notify     bool
	serveAddr  string
	dry        bool
	debug      bool

	// now acts as time.Now, but can be mocked for testing.
	now func() time.Time
	// ready, if set, is called when the server is ready to accept requests.
	ready func()

	// initialized by doInit
	httpc     *http.Client
	logf      logger.Logf
	logStream logger.Streamer
	slog      *slog.Logger
	slogLevel *slog.LevelVar
	cache     *syncx.Protected[*cachedDigest]

	// set on each run
	cfg      *config.Config
	sort     show.SortMode
	scrubber *strings.Replacer
	tvmaze   *tvmaze.Client
	telegram *telegram.Sender
	rule     *filter.Rule
}

// logStreamLines is the size of the log ring buffer behind the debug page.
const logStreamLines = 300

func (f *fetcher) doInit(ctx context.Context) {
	env := cli.GetEnv(ctx)
	f.logf = env.Logf

	l := logger.Get(ctx)
	if f.serveAddr != "" {
		// In serve mode logs also feed the stream served on the debug page.
		f.logStream = logger.NewStreamer(logStreamLines)
		w := io.MultiWriter(env.Stderr, f.logStream)
		f.logf = log.New(w, "", 0).Printf
		l = logger.New(w)
	}
	f.slogLevel = l.Level
	f.slog = l.Logger

	if f.now == nil {
		f.now = time.Now
	}
	if f.httpc == nil {
		f.httpc = request.DefaultClient
		if f.debug {
			f.httpc = &http.Client{
				Transport: httplogger.New(http.DefaultTransport, httplogger.Logf(f.logf)),
				Timeout:   request.DefaultClient.Timeout,
			}
		}
	}
	f.cache = syncx.Protect[*cachedDigest](nil)
}

// splitList splits a comma-separated flag value, trimming whitespace and
// dropping empty elements. An empty value returns nil, leaving lower config
// layers in effect.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, el := range strings.Split(s, ",") {
		if el = strings.TrimSpace(el); el != "" {
			out = append(out, el)
		}
	}
	return out
}

// buildDigest fetches both schedule sources for date and assembles the
// digest. Fetch failures are not fatal: the failed source degrades to an
// empty list, so an outage of one source still produces a digest.
func (f *fetcher) buildDigest(ctx context.Context, date string) *render.Digest {
	schedule, err := f.tvmaze.Schedule(ctx, date, f.cfg.Country)
	if err != nil {
		f.slog.Warn("fetching broadcast schedule failed", "date", date, "error", err)
	}
	web, err := f.tvmaze.WebSchedule(ctx, date)
	if err != nil {
		f.slog.Warn("fetching web schedule failed", "date", date, "error", err)
	}

	shows := show.NormalizeAll(append(schedule, web...))
	shows = filter.Apply(shows, f.cfg.FilterOptions(f.rule))

	f.slog.Debug("digest built", "date", date, "episodes", len(shows))

	return &render.Digest{
		Date:    date,
		Country: f.cfg.Country,
		Groups:  show.GroupByNetwork(shows),
		Sort:    f.sort,
	}
}

// digestJSON is the JSON shape of a digest, used by -json output and the
// /digest.json endpoint.
type digestJSON struct {
	Date     string             `json:"date"`
	Country  string             `json:"country,omitempty"`
	Networks show.NetworkGroups `json:"networks"`
}

func (f *fetcher) printDigest(ctx context.Context, w io.Writer) error {
	d := f.buildDigest(ctx, f.cfg.Date)
	if f.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(digestJSON{Date: d.Date, Country: d.Country, Networks: d.Groups})
	}
	_, err := io.WriteString(w, render.Build(d, render.Text{}))
	return err
}

// deliver builds the digest for date and sends it to Telegram.
func (f *fetcher) deliver(ctx context.Context, date string) error {
	if !f.cfg.HasTelegram() {
		return errNoTelegram
	}

	d := f.buildDigest(ctx, date)
	f.cache.Set(&cachedDigest{built: f.now(), digest: d})

	parts := render.Sections(d, render.HTML{})
	if f.dry {
		f.slog.Info("dry run, not sending digest", "date", date, "parts", len(parts))
		return nil
	}
	if err := f.telegram.SendDigest(ctx, parts); err != nil {
		return fmt.Errorf("sending digest for %s failed: %w", date, err)
	}
	f.slog.Info("digest delivered", "date", date, "episodes", d.Episodes())
	return nil
}

// errNotify reports err to the configured Telegram chat. When the report
// can't be delivered either, both errors are returned.
func (f *fetcher) errNotify(ctx context.Context, err error) error {
	if f.dry || !f.cfg.HasTelegram() {
		return err
	}
	text := fmt.Sprintf(errorTemplate, html.EscapeString(err.Error()))
	if f.cfg.Contact != "" {
		text += "\nContact: " + html.EscapeString(f.cfg.Contact)
	}
	if sendErr := f.telegram.SendDigest(ctx, []string{text}); sendErr != nil {
		return errors.Join(err, sendErr)
	}
	return nil
}
