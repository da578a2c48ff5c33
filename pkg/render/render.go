// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

// Package render turns response snapshots into terminal output. Renderers
// are stateless between calls except for display bookkeeping: every Render
// call receives the complete current snapshot and produces the complete
// representation of the turn so far, never a diff. Any single call may be
// the only one observed before the stream ends, so partial output must
// still read correctly.
package render

import (
	"fmt"

	"github.com/leseb/openresponses-cli/pkg/core/schema"
)

// Renderer is the presentation contract driven by the stream reconciler.
type Renderer interface {
	// Render displays the complete current snapshot.
	Render(resp *schema.Response)

	// RenderStatus displays an out-of-band status line.
	RenderStatus(text string)

	// RenderError displays an out-of-band error line.
	RenderError(text string)

	// Complete flushes any buffered or live-updating display resource.
	// Called once per turn in one-shot mode, once per session in chat mode.
	Complete()
}

// Options configure a renderer at construction. Renderers carry no other
// cross-call state.
type Options struct {
	Width   int    // 0 means autodetect (rich) or unbounded (plain)
	Style   string // glamour style for the rich renderer: "auto", "dark", "light"
	Verbose bool   // include usage counters and item ids
	NoColor bool
}

// Names of the built-in renderers, valid values for New.
const (
	NameRich  = "rich"
	NameJSON  = "json"
	NamePlain = "plain"
)

// New constructs a renderer by name.
func New(name string, opts Options) (Renderer, error) {
	switch name {
	case NameRich, "":
		return NewRich(opts)
	case NameJSON:
		return NewJSON(opts), nil
	case NamePlain:
		return NewPlain(opts), nil
	default:
		return nil, fmt.Errorf("unknown renderer %q (available: rich, json, plain)", name)
	}
}

// citationIndex assigns 1-based display indices to every annotation in the
// snapshot, keyed by traversal position. Recomputed from scratch on every
// render so indices stay contiguous even when earlier snapshots are
// superseded mid-stream.
func citationIndex(resp *schema.Response) []schema.Annotation {
	return resp.Citations()
}
