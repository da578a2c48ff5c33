// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

// Package stream reconciles a server-pushed event sequence into an
// authoritative response state. The protocol emits cumulative snapshots,
// not deltas: every snapshot wholesale replaces the prior one, so the
// reconciler keeps no merge logic and tolerates dropped or duplicated
// intermediate events. Events are processed strictly sequentially; the
// render call for snapshot n+1 starts only after the call for snapshot n
// returned.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/leseb/openresponses-cli/pkg/core/schema"
	"github.com/leseb/openresponses-cli/pkg/observability/logging"
	"github.com/leseb/openresponses-cli/pkg/render"
)

// Terminal event kinds.
const (
	KindDone  = "done"
	KindError = "error"
)

// Event is one element of the stream: a kind plus an optional snapshot.
// Raw carries the undecoded payload for best-effort error extraction.
type Event struct {
	Kind     string
	Response *schema.Response
	Raw      json.RawMessage
}

// ErrNoData reports a stream that closed before delivering any snapshot
// or terminal marker. This is the one unrecoverable outcome.
var ErrNoData = errors.New("stream ended without data")

// StreamError is a protocol-level "error" event surfaced by the server.
// It is turn-scoped: the session stays usable afterward.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string { return e.Message }

// Reconciler drives a renderer from a stream of events.
type Reconciler struct {
	renderer render.Renderer
	logger   *logging.Logger
	chatMode bool
	debug    bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithChatMode defers renderer finalization to the session, which reuses
// the live display across turns.
func WithChatMode() Option {
	return func(r *Reconciler) { r.chatMode = true }
}

// WithDebug logs every event kind received.
func WithDebug() Option {
	return func(r *Reconciler) { r.debug = true }
}

// New creates a Reconciler.
func New(renderer render.Renderer, logger *logging.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{renderer: renderer, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HandleStream consumes events until a terminal marker, stream closure, or
// context cancellation, and returns the last snapshot observed. Every
// snapshot is forwarded to the renderer as it arrives.
//
// Outcomes:
//   - "done":    renderer finalized (unless chat mode), last snapshot returned
//   - "error":   message routed to RenderError, last snapshot and *StreamError returned
//   - closure:   last snapshot returned; ErrNoData if nothing was observed
//   - ctx done:  last snapshot and the context error returned
func (r *Reconciler) HandleStream(ctx context.Context, events <-chan Event) (*schema.Response, error) {
	var last *schema.Response

	for {
		select {
		case <-ctx.Done():
			return last, ctx.Err()

		case ev, ok := <-events:
			if !ok {
				if last == nil {
					return nil, ErrNoData
				}
				// The transport closed after delivering data; each snapshot
				// is self-contained, so the last one stands.
				return last, nil
			}

			if r.debug {
				r.logger.Debug("stream event", "kind", ev.Kind, "has_snapshot", ev.Response != nil)
			}

			if ev.Response != nil {
				last = ev.Response
				r.renderer.Render(last)
			}

			switch ev.Kind {
			case KindDone:
				if !r.chatMode {
					r.renderer.Complete()
				}
				return last, nil

			case KindError:
				msg := errorMessage(ev.Raw)
				r.renderer.RenderError(msg)
				return last, &StreamError{Message: msg}
			}
		}
	}
}

const maxRawErrorLen = 200

// errorMessage extracts a human-readable message from a possibly-malformed
// error payload. The server should send {"error": {"message": ...}} but
// degraded backends have been observed sending bare strings or partial
// objects.
func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "stream error (no details)"
	}
	for _, path := range []string{"error.message", "message", "error"} {
		if v := gjson.GetBytes(raw, path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return "stream error (no details)"
	}
	if len(s) > maxRawErrorLen {
		s = s[:maxRawErrorLen] + "…"
	}
	return fmt.Sprintf("stream error: %s", s)
}
