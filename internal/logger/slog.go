// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package logger

import (
	"context"
	"io"
	"log/slog"
)

// Logger bundles a [slog.Logger] together with the level it filters on, so
// that commands can flip to debug logging after flag parsing.
type Logger struct {
	Logger *slog.Logger
	Level  *slog.LevelVar
}

// New returns a Logger writing text to w at [slog.LevelInfo].
func New(w io.Writer) *Logger {
	level := new(slog.LevelVar)
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})),
		Level:  level,
	}
}

type ctxKey struct{}

// Attach returns a new context with the provided Logger attached.
func Attach(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the Logger attached to ctx, if any.
func FromContext(ctx context.Context) (*Logger, bool) {
	l, ok := ctx.Value(ctxKey{}).(*Logger)
	return l, ok
}

// Get returns the Logger attached to ctx, or a Logger writing to the default
// [slog.Default] handler when ctx has none.
func Get(ctx context.Context) *Logger {
	if l, ok := FromContext(ctx); ok {
		return l
	}
	return &Logger{
		Logger: slog.Default(),
		Level:  new(slog.LevelVar),
	}
}
