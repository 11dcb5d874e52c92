// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package filter

import (
	"errors"
	"log/slog"

	"go.astrophena.name/tvfeed/internal/show"
	"go.astrophena.name/tvfeed/internal/starlark/go2star"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"
)

// Rule is a pair of optional Starlark functions loaded from a rules file:
// block_show(show) and keep_show(show). Block runs first: a show it returns
// True for is dropped. Keep runs second: when defined, a show it doesn't
// return True for is dropped.
type Rule struct {
	keep  *starlark.Function
	block *starlark.Function
	slog  *slog.Logger
}

// LoadRules parses a Starlark rules file. src follows the conventions of
// [starlark.ExecFile]: nil means read the file named by name. The file must
// define keep_show or block_show (or both), each taking a single show
// argument.
func LoadRules(name string, src any, slogger *slog.Logger) (*Rule, error) {
	if slogger == nil {
		slogger = slog.Default()
	}
	globals, err := starlark.ExecFileOptions(
		&syntax.FileOptions{
			TopLevelControl: true,
		},
		&starlark.Thread{
			Print: func(_ *starlark.Thread, msg string) { slogger.Info(msg) },
		},
		name,
		src,
		starlark.StringDict{},
	)
	if err != nil {
		return nil, err
	}

	r := &Rule{slog: slogger}
	if fn, ok := globals["keep_show"].(*starlark.Function); ok {
		r.keep = fn
	}
	if fn, ok := globals["block_show"].(*starlark.Function); ok {
		r.block = fn
	}
	if r.keep == nil && r.block == nil {
		return nil, errors.New("rules file defines neither keep_show nor block_show")
	}
	return r, nil
}

// Keep reports whether the rule set keeps s.
func (r *Rule) Keep(s show.Show) bool {
	if r.block != nil && r.call(r.block, s) {
		return false
	}
	if r.keep != nil && !r.call(r.keep, s) {
		return false
	}
	return true
}

// call invokes a rule function with s converted to a Starlark struct. An
// evaluation error or a non-boolean result counts as False.
func (r *Rule) call(fn *starlark.Function, s show.Show) bool {
	genres, err := go2star.To(s.Genres)
	if err != nil {
		r.slog.Warn("failed to convert show genres to Starlark", "show", s.Name, "error", err)
		return false
	}
	val, err := starlark.Call(
		&starlark.Thread{
			Print: func(_ *starlark.Thread, msg string) { r.slog.Info(msg) },
		},
		fn,
		starlark.Tuple{starlarkstruct.FromStringDict(
			starlarkstruct.Default,
			starlark.StringDict{
				"id":       starlark.MakeInt(s.ID),
				"name":     starlark.String(s.Name),
				"type":     starlark.String(s.Type),
				"language": starlark.String(s.Language),
				"genres":   genres,
				"network":  starlark.String(s.Network),
				"summary":  starlark.String(s.Summary),
				"airtime":  starlark.String(s.Airtime),
				"season":   starlark.MakeInt(s.Season),
				"number":   starlark.MakeInt(s.Number),
			},
		)},
		[]starlark.Tuple{},
	)
	if err != nil {
		r.slog.Warn("applying rule for show", "show", s.Name, "error", err)
		return false
	}

	ret, ok := val.(starlark.Bool)
	if !ok {
		r.slog.Warn("rule returned non-boolean value", "show", s.Name)
		return false
	}
	return bool(ret)
}
