// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"go.astrophena.name/tvfeed/internal/logger"
	"go.astrophena.name/tvfeed/internal/systemd"

	"github.com/benbjohnson/hashfs"
)

// Middleware is a function that wraps an [http.Handler], adding some behavior
// to it.
type Middleware func(next http.Handler) http.Handler

//go:generate curl --fail-with-body -s -o static/css/main.css https://astrophena.name/css/main.css

// ListenAndServeConfig is used to configure the HTTP server started by
// [ListenAndServe].
//
// All fields of ListenAndServeConfig can't be modified after [ListenAndServe]
// is called.
type ListenAndServeConfig struct {
	// Addr is a network address to listen on (in the form of "host:port").
	Addr string
	// Mux is a http.ServeMux to serve.
	Mux *http.ServeMux
	// Logf specifies a logger to use. If nil, log.Printf is used.
	Logf logger.Logf
	// Debuggable specifies whether to register debug handlers at /debug/.
	Debuggable bool
	// DebugAuth specifies an optional function that's invoked on every request to
	// debug handlers at /debug/ to allow or deny access to them. If not provided,
	// all access is allowed.
	DebugAuth func(r *http.Request) bool
	// Ready specifies an optional function to be called when the server is ready
	// to serve requests.
	Ready func()
	// Middleware is an optional list of middleware applied to all requests
	// before they reach Mux. The first middleware in the list is the outermost.
	Middleware []Middleware
	// NotifySystemd specifies whether to tell systemd when the server is ready
	// to serve requests and to keep updating its watchdog timestamp.
	NotifySystemd bool
}

var (
	errNoAddr = errors.New("c.Addr is empty")
	errNilMux = errors.New("c.Mux is nil")
)

// cspHeader is the Content-Security-Policy header set on all responses.
const cspHeader = "default-src 'self'; " +
	"img-src 'self' data:; " +
	"object-src 'none'; " +
	"base-uri 'none'; " +
	"frame-ancestors 'none'"

func setHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referer-Policy", "same-origin")
		w.Header().Set("Content-Security-Policy", cspHeader)
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe starts the HTTP server based on the provided
// [ListenAndServeConfig].
func ListenAndServe(ctx context.Context, c *ListenAndServeConfig) error {
	if c.Logf == nil {
		c.Logf = log.Printf
	}
	if c.Addr == "" {
		return errNoAddr
	}
	if c.Mux == nil {
		return errNilMux
	}

	l, err := net.Listen("tcp", c.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %v", err)
	}
	defer l.Close()
	c.Logf("Listening on %s...", l.Addr().String())

	protectDebug := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/debug/") || c.DebugAuth == nil {
				next.ServeHTTP(w, r)
				return
			}
			// If access denied, pretend that debug endpoints don't exist.
			if !c.DebugAuth(r) {
				RespondError(w, r, ErrNotFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	handler := http.Handler(setHeaders(protectDebug(c.Mux)))
	for i := len(c.Middleware) - 1; i >= 0; i-- {
		handler = c.Middleware[i](handler)
	}

	s := &http.Server{
		ErrorLog:    log.New(c.Logf, "", 0),
		Handler:     handler,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	initInternalRoutes(c, s)

	errCh := make(chan error, 1)

	go func() {
		if err := s.Serve(l); err != nil {
			if err != http.ErrServerClosed {
				errCh <- err
			}
		}
	}()

	if c.NotifySystemd {
		systemd.Notify(c.Logf, systemd.Ready)
		go systemd.WatchdogLoop(ctx, c.Logf)
	}
	if c.Ready != nil {
		c.Ready()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		c.Logf("Gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	return nil
}

//go:embed static
var embedFS embed.FS

// StaticFS is a [fs.FS] that contains static resources served on /static/ path
// prefix of [ListenAndServe] servers.
var StaticFS = hashfs.NewFS(embedFS)

func initInternalRoutes(c *ListenAndServeConfig, s *http.Server) {
	c.Mux.Handle("/static/", hashfs.FileServer(StaticFS))
	Health(c.Mux)
	if c.Debuggable {
		Debugger(c.Mux).Handle("conns", "Connections", Conns(s))
	}
}
