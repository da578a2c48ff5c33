// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

// Package toolcall classifies response output items into tool-call kinds
// and normalized lifecycle phases. Classification happens here, once, so
// renderers never probe raw item fields: they receive a View with exactly
// the fields worth showing. Unrecognized discriminants classify as
// KindUnknown and render through a generic fallback, which keeps the
// client forward-compatible with new server-side tool kinds.
package toolcall

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/leseb/openresponses-cli/pkg/core/schema"
)

// Kind identifies a known tool-call kind.
type Kind int

const (
	KindUnknown Kind = iota
	KindFileSearch
	KindWebSearch
	KindFileRead
	KindPageRead
	KindFindFiles
	KindListFiles
	KindCodeInterpreter
	KindFunction
)

// kindTable maps item type discriminants to kinds. Built once at process
// start; lookups never mutate it.
var kindTable = map[string]Kind{
	schema.ItemTypeFileSearchCall:  KindFileSearch,
	schema.ItemTypeWebSearchCall:   KindWebSearch,
	schema.ItemTypeFileReadCall:    KindFileRead,
	schema.ItemTypePageReadCall:    KindPageRead,
	schema.ItemTypeFindFilesCall:   KindFindFiles,
	schema.ItemTypeListFilesCall:   KindListFiles,
	schema.ItemTypeCodeInterpreter: KindCodeInterpreter,
	schema.ItemTypeFunctionCall:    KindFunction,
}

// kindLabels are the badge texts shown in front of each tool status line.
var kindLabels = map[Kind]string{
	KindUnknown:         "tool",
	KindFileSearch:      "file search",
	KindWebSearch:       "web search",
	KindFileRead:        "read file",
	KindPageRead:        "read page",
	KindFindFiles:       "find files",
	KindListFiles:       "list files",
	KindCodeInterpreter: "code",
	KindFunction:        "function",
}

func (k Kind) String() string { return kindLabels[k] }

// Phase is a tool call's normalized lifecycle phase.
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseQueued
	PhaseRunning
	PhaseCompleted
	PhaseFailed
)

var phaseNames = map[Phase]string{
	PhaseUnknown:   "pending",
	PhaseQueued:    "queued",
	PhaseRunning:   "running",
	PhaseCompleted: "completed",
	PhaseFailed:    "failed",
}

func (p Phase) String() string { return phaseNames[p] }

// NormalizePhase maps the raw status strings the server emits at various
// phases onto the Phase enum. An absent status is PhaseUnknown, not an
// error: early snapshots ship tool items before any status is assigned.
func NormalizePhase(status *string) Phase {
	if status == nil {
		return PhaseUnknown
	}
	switch *status {
	case "queued":
		return PhaseQueued
	case "in_progress", "searching", "interpreting", "running":
		return PhaseRunning
	case "completed":
		return PhaseCompleted
	case "failed", "incomplete", "errored":
		return PhaseFailed
	default:
		return PhaseUnknown
	}
}

// IsToolCall reports whether an output item is a tool invocation, i.e.
// neither a message nor a reasoning block. Unknown discriminants count as
// tool calls so that new server-side kinds still get a status line.
func IsToolCall(item schema.ItemField) bool {
	return item.Type != schema.ItemTypeMessage && item.Type != schema.ItemTypeReasoning
}

// View is the normalized display payload for one tool-call item. Every
// field is optional in the source data; zero values mean absent.
type View struct {
	Kind  Kind
	Phase Phase

	// Search-style calls
	Queries     []string
	ResultCount *int

	// File readers
	FileID   string
	Filename string
	Page     *int

	// Code interpreter
	Code string

	// Function calls
	FunctionName string
	Arguments    string // compact preview, not raw JSON
	Output       string

	// Unknown kinds: raw discriminant for the fallback badge
	RawType string
}

// Classify resolves one output item into a View. It never fails: items
// with unrecognized discriminants or missing fields produce a View that
// renders through the generic fallback.
func Classify(item schema.ItemField) View {
	v := View{
		Kind:    kindTable[item.Type], // zero value is KindUnknown
		Phase:   NormalizePhase(item.Status),
		RawType: item.Type,
	}

	if len(item.Queries) > 0 {
		v.Queries = item.Queries
	}
	if item.Results != nil {
		n := len(item.Results)
		v.ResultCount = &n
	}
	if item.FileID != nil {
		v.FileID = *item.FileID
	}
	if item.Filename != nil {
		v.Filename = *item.Filename
	}
	v.Page = item.PageNumber
	if item.Code != nil {
		v.Code = *item.Code
	}
	if item.Name != nil {
		v.FunctionName = *item.Name
	}
	if item.Arguments != nil {
		v.Arguments = argumentsPreview(*item.Arguments)
	}
	if item.Output != nil {
		v.Output = *item.Output
	}
	return v
}

const maxArgValueLen = 40

// argumentsPreview renders a function call's JSON argument map as a short
// "key=value, key=value" line. Malformed JSON is shown truncated as-is
// rather than dropped.
func argumentsPreview(raw string) string {
	if raw == "" {
		return ""
	}
	parsed := gjson.Parse(raw)
	if !parsed.IsObject() {
		return truncate(strings.TrimSpace(raw), maxArgValueLen*2)
	}
	var parts []string
	parsed.ForEach(func(key, value gjson.Result) bool {
		parts = append(parts, fmt.Sprintf("%s=%s", key.String(), truncate(value.String(), maxArgValueLen)))
		return true
	})
	return strings.Join(parts, ", ")
}

// truncate shortens s to at most n runes. Cutting on rune boundaries
// keeps non-ASCII arguments valid UTF-8.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
