// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/leseb/openresponses-cli/pkg/core/schema"
)

// JSON renders turns as structured data for scripting: status and error
// lines are emitted immediately as NDJSON events on stderr, and each
// turn's final snapshot is written to stdout as one indented JSON
// document, when the next turn starts (response id change) or on
// Complete.
type JSON struct {
	out    io.Writer
	errOut io.Writer
	opts   Options
	last   *schema.Response
	turnID string
	done   bool
}

// NewJSON creates a structured renderer writing to stdout/stderr.
func NewJSON(opts Options) *JSON {
	return &JSON{out: os.Stdout, errOut: os.Stderr, opts: opts}
}

// NewJSONWriter creates a structured renderer with explicit writers.
func NewJSONWriter(out, errOut io.Writer, opts Options) *JSON {
	return &JSON{out: out, errOut: errOut, opts: opts}
}

func (j *JSON) Render(resp *schema.Response) {
	// A new response id starts a new turn; emit the finished one first.
	if resp.ID != j.turnID {
		j.flush()
		j.turnID = resp.ID
	}
	j.last = resp
	j.done = false
}

func (j *JSON) RenderStatus(text string) {
	j.event("status", text)
}

func (j *JSON) RenderError(text string) {
	j.event("error", text)
}

func (j *JSON) Complete() {
	j.flush()
	j.done = true
}

func (j *JSON) flush() {
	if j.done || j.last == nil {
		return
	}
	data, err := json.MarshalIndent(j.last, "", "  ")
	if err != nil {
		j.event("error", fmt.Sprintf("marshal response: %v", err))
		return
	}
	fmt.Fprintf(j.out, "%s\n", data)
	j.last = nil
}

func (j *JSON) event(kind, message string) {
	line, err := json.Marshal(map[string]string{"type": kind, "message": message})
	if err != nil {
		return
	}
	fmt.Fprintf(j.errOut, "%s\n", line)
}
