// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/leseb/openresponses-cli/pkg/core/schema"
)

func strPtr(s string) *string { return &s }

func TestPlainWebSearchTurn(t *testing.T) {
	// A completed web search with three results, then the answer citing
	// two of them.
	resp := &schema.Response{
		ID:     "resp_1",
		Status: schema.StatusCompleted,
		Output: []schema.ItemField{
			{
				Type:    schema.ItemTypeWebSearchCall,
				ID:      "ws_1",
				Status:  strPtr("completed"),
				Queries: []string{"go 1.25 release notes"},
				Results: []schema.SearchResult{
					{URL: strPtr("https://go.dev/doc/go1.25"), Title: strPtr("Go 1.25 Release Notes")},
					{URL: strPtr("https://go.dev/blog/go1.25"), Title: strPtr("Go 1.25 is released")},
					{URL: strPtr("https://go.dev/doc/devel/release"), Title: strPtr("Release History")},
				},
			},
			{
				Type: schema.ItemTypeMessage,
				ID:   "msg_1",
				Content: []schema.ContentPart{{
					Type: "output_text",
					Text: strPtr("Go 1.25 shipped in August."),
					Annotations: []schema.Annotation{
						{Type: schema.AnnotationURLCitation, URL: "https://go.dev/doc/go1.25", Title: "Go 1.25 Release Notes"},
						{Type: schema.AnnotationURLCitation, URL: "https://go.dev/blog/go1.25", Title: "Go 1.25 is released"},
					},
				}},
			},
		},
	}

	var out, errOut bytes.Buffer
	p := NewPlainWriter(&out, &errOut, Options{})
	p.Render(resp)
	p.Complete()

	got := out.String()
	if !strings.Contains(got, "web search [completed]") {
		t.Errorf("missing tool status line in:\n%s", got)
	}
	if !strings.Contains(got, "3 results") {
		t.Errorf("missing result count in:\n%s", got)
	}
	if !strings.Contains(got, "Go 1.25 shipped in August.") {
		t.Errorf("missing message text in:\n%s", got)
	}
	// Citation indices start at 1 and are contiguous.
	if !strings.Contains(got, "[1] Go 1.25 Release Notes (https://go.dev/doc/go1.25)") {
		t.Errorf("missing first citation in:\n%s", got)
	}
	if !strings.Contains(got, "[2] Go 1.25 is released (https://go.dev/blog/go1.25)") {
		t.Errorf("missing second citation in:\n%s", got)
	}
	if strings.Contains(got, "[0]") || strings.Contains(got, "[3]") {
		t.Errorf("citation indices not contiguous from 1 in:\n%s", got)
	}
}

func TestPlainIntermediateSnapshotsReplaced(t *testing.T) {
	first := &schema.Response{
		ID:     "resp_1",
		Status: schema.StatusInProgress,
		Output: []schema.ItemField{{
			Type:    schema.ItemTypeMessage,
			Content: []schema.ContentPart{{Type: "output_text", Text: strPtr("partial")}},
		}},
	}
	second := &schema.Response{
		ID:     "resp_1",
		Status: schema.StatusCompleted,
		Output: []schema.ItemField{{
			Type:    schema.ItemTypeMessage,
			Content: []schema.ContentPart{{Type: "output_text", Text: strPtr("partial answer, now complete")}},
		}},
	}

	var out, errOut bytes.Buffer
	p := NewPlainWriter(&out, &errOut, Options{})
	p.Render(first)
	p.Render(second)
	p.Complete()
	p.Complete() // second flush is a no-op

	got := out.String()
	if strings.Count(got, "partial") != 1 {
		t.Errorf("earlier snapshot leaked into output:\n%s", got)
	}
	if !strings.Contains(got, "partial answer, now complete") {
		t.Errorf("final snapshot missing:\n%s", got)
	}
}

func TestPlainMultiTurn(t *testing.T) {
	// Chat mode renders several turns before the single Complete at
	// session end; a finished turn is written out when the next one
	// starts.
	turn := func(id, text string) *schema.Response {
		return &schema.Response{
			ID:     id,
			Status: schema.StatusCompleted,
			Output: []schema.ItemField{{
				Type:    schema.ItemTypeMessage,
				Content: []schema.ContentPart{{Type: "output_text", Text: strPtr(text)}},
			}},
		}
	}

	var out, errOut bytes.Buffer
	p := NewPlainWriter(&out, &errOut, Options{})
	p.Render(turn("resp_1", "first answer"))
	p.Render(turn("resp_2", "second answer"))
	p.Complete()

	got := out.String()
	if !strings.Contains(got, "first answer") {
		t.Errorf("turn 1 output lost:\n%s", got)
	}
	if !strings.Contains(got, "second answer") {
		t.Errorf("turn 2 output missing:\n%s", got)
	}
	if strings.Index(got, "first answer") > strings.Index(got, "second answer") {
		t.Errorf("turns out of order:\n%s", got)
	}
}

func TestPlainReasoning(t *testing.T) {
	resp := &schema.Response{
		ID: "resp_1",
		Output: []schema.ItemField{{
			Type:    schema.ItemTypeReasoning,
			Summary: []schema.SummaryPart{{Type: "summary_text", Text: "first line\nsecond line"}},
		}},
	}

	var out, errOut bytes.Buffer
	p := NewPlainWriter(&out, &errOut, Options{})
	p.Render(resp)
	p.Complete()

	got := out.String()
	if !strings.Contains(got, "> first line\n> second line\n") {
		t.Errorf("reasoning not quoted per line:\n%s", got)
	}
}

func TestPlainUnknownToolFallback(t *testing.T) {
	resp := &schema.Response{
		ID: "resp_1",
		Output: []schema.ItemField{{
			Type:   "image_generation_call",
			ID:     "ig_1",
			Status: strPtr("in_progress"),
		}},
	}

	var out, errOut bytes.Buffer
	p := NewPlainWriter(&out, &errOut, Options{})
	p.Render(resp)
	p.Complete()

	got := out.String()
	if !strings.Contains(got, "tool [running] type=image_generation_call") {
		t.Errorf("unknown tool kind did not render through fallback:\n%s", got)
	}
}

func TestPlainStatusAndErrorGoToErrOut(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPlainWriter(&out, &errOut, Options{})

	p.RenderStatus("interrupted")
	p.RenderError("backend unavailable")

	if out.Len() != 0 {
		t.Errorf("status/error lines leaked to stdout: %q", out.String())
	}
	if got := errOut.String(); got != "* interrupted\nerror: backend unavailable\n" {
		t.Errorf("errOut = %q", got)
	}
}

func TestPlainVerboseUsage(t *testing.T) {
	resp := &schema.Response{
		ID:     "resp_1",
		Status: schema.StatusCompleted,
		Output: []schema.ItemField{{
			Type:    schema.ItemTypeMessage,
			Content: []schema.ContentPart{{Type: "output_text", Text: strPtr("done")}},
		}},
		Usage: &schema.UsageField{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}

	var out, errOut bytes.Buffer
	p := NewPlainWriter(&out, &errOut, Options{Verbose: true})
	p.Render(resp)
	p.Complete()

	if !strings.Contains(out.String(), "tokens: 10 in, 5 out, 15 total") {
		t.Errorf("usage line missing:\n%s", out.String())
	}
}

func TestNewUnknownRenderer(t *testing.T) {
	if _, err := New("fancy", Options{}); err == nil {
		t.Error("expected error for unknown renderer name")
	}
}
