// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.astrophena.name/tvfeed/internal/idle"
	"go.astrophena.name/tvfeed/internal/render"
	"go.astrophena.name/tvfeed/internal/web"
)

// digestCacheTTL bounds how long HTTP handlers serve a cached digest before
// rebuilding it.
const digestCacheTTL = 15 * time.Minute

type cachedDigest struct {
	built  time.Time
	digest *render.Digest
}

// serve runs tvfeed as a server: it exposes the current digest over HTTP
// and delivers it to Telegram every day at the configured notification time.
func (f *fetcher) serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tracker := idle.NewTracker(cancel)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", f.handleDigestText)
	mux.HandleFunc("GET /digest.json", f.handleDigestJSON)

	if f.debug {
		dbg := web.Debugger(mux)
		dbg.Handle("log", "Log", f.logStream)
		dbg.KVFunc("Cached digest", func() any {
			var date string
			f.cache.ReadAccess(func(c *cachedDigest) {
				if c != nil {
					date = c.digest.Date + ", built at " + c.built.Format(time.RFC3339)
				}
			})
			if date == "" {
				return "none"
			}
			return date
		})
		if tracker != nil {
			dbg.KVFunc("Last request", func() any {
				return tracker.LastActivity().Format(time.RFC3339)
			})
		}
	}

	srv := &web.ListenAndServeConfig{
		Addr:          f.serveAddr,
		Mux:           mux,
		Logf:          f.logf,
		Debuggable:    f.debug,
		Ready:         f.ready,
		NotifySystemd: true,
	}

	if tracker != nil {
		tracker.Run(ctx)
		srv.Middleware = append(srv.Middleware, tracker.Handler)
	}

	go f.deliverLoop(ctx)

	return web.ListenAndServe(ctx, srv)
}

// deliverLoop fires a delivery once a day at the configured notification
// time in the configured timezone.
func (f *fetcher) deliverLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	var lastSent string
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			day, due := deliveryDue(now.In(f.cfg.Location), f.cfg.NotificationTime, lastSent)
			if !due {
				continue
			}
			lastSent = day
			if err := f.deliver(ctx, day); err != nil {
				f.slog.Error("scheduled delivery failed", "date", day, "error", err)
				if err := f.errNotify(ctx, err); err != nil {
					f.slog.Error("reporting the failure failed too", "error", err)
				}
			}
		}
	}
}

// deliveryDue reports whether a digest is due at now, given the HH:MM
// delivery time and the day of the last delivery. When due, it returns the
// day to deliver for.
func deliveryDue(now time.Time, at, lastSent string) (day string, due bool) {
	if now.Format("15:04") != at {
		return "", false
	}
	day = now.Format(time.DateOnly)
	if day == lastSent {
		return "", false
	}
	return day, true
}

func (f *fetcher) handleDigestText(w http.ResponseWriter, r *http.Request) {
	d := f.currentDigest(r.Context())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, render.Build(d, render.Text{}))
}

func (f *fetcher) handleDigestJSON(w http.ResponseWriter, r *http.Request) {
	d := f.currentDigest(r.Context())
	web.RespondJSON(w, digestJSON{Date: d.Date, Country: d.Country, Networks: d.Groups})
}

// currentDigest returns the digest for the current day, rebuilding it when
// the cached one is stale or was built for another day.
func (f *fetcher) currentDigest(ctx context.Context) *render.Digest {
	date := f.now().In(f.cfg.Location).Format(time.DateOnly)

	var d *render.Digest
	f.cache.ReadAccess(func(c *cachedDigest) {
		if c == nil {
			return
		}
		if c.digest.Date == date && f.now().Sub(c.built) < digestCacheTTL {
			d = c.digest
		}
	})
	if d != nil {
		return d
	}

	d = f.buildDigest(ctx, date)
	f.cache.Set(&cachedDigest{built: f.now(), digest: d})
	return d
}
