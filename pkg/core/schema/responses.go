// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"strings"
)

// Response status values. A response moves forward through this lifecycle
// and never backward within one turn.
const (
	StatusCreated    = "created"
	StatusQueued     = "queued"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
	StatusIncomplete = "incomplete"
)

// Response is one conversational turn's evolving state as reported by the
// server. Streaming re-sends the whole object as it evolves; each snapshot
// supersedes the previous one entirely.
type Response struct {
	// Unique identifier, stable across all snapshots of the same turn
	ID string `json:"id"`

	// Object type, always "response"
	Object string `json:"object,omitempty"`

	// Creation timestamp (unix seconds)
	CreatedAt int64 `json:"created_at"`

	// Completion timestamp
	CompletedAt *int64 `json:"completed_at,omitempty"`

	// Model used
	Model string `json:"model"`

	// Status: see Status* constants
	Status string `json:"status"`

	// Output items in emission order. Order is stable across snapshots.
	Output []ItemField `json:"output"`

	// Token usage, typically present only on the final snapshot
	Usage *UsageField `json:"usage,omitempty"`

	// Error details if status is "failed"
	Error *ErrorField `json:"error,omitempty"`

	// Incomplete details if status is "incomplete"
	IncompleteDetails *IncompleteDetailsField `json:"incomplete_details,omitempty"`

	// Echoed request parameters the client cares about
	Conversation       *string         `json:"conversation,omitempty"`
	PreviousResponseID *string         `json:"previous_response_id,omitempty"`
	Instructions       *string         `json:"instructions,omitempty"`
	Tools              []ResponsesTool `json:"tools,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// Output item discriminants. Unrecognized values are valid input and are
// classified as unknown by pkg/core/toolcall.
const (
	ItemTypeMessage         = "message"
	ItemTypeReasoning       = "reasoning"
	ItemTypeFileSearchCall  = "file_search_call"
	ItemTypeWebSearchCall   = "web_search_call"
	ItemTypeFileReadCall    = "file_read_call"
	ItemTypePageReadCall    = "page_read_call"
	ItemTypeFindFilesCall   = "find_files_call"
	ItemTypeListFilesCall   = "list_files_call"
	ItemTypeCodeInterpreter = "code_interpreter_call"
	ItemTypeFunctionCall    = "function_call"
)

// ItemField represents an output item (discriminated union by type).
// Only the fields matching the discriminant are populated, and a tool item
// does not populate every field at every phase: e.g. search results appear
// only once the call completes.
type ItemField struct {
	Type string `json:"type"`
	ID   string `json:"id"`

	// Lifecycle status. Messages and reasoning use "in_progress"/"completed";
	// tool calls additionally use "queued", "searching" and "failed".
	Status *string `json:"status,omitempty"`

	// Message fields (type="message")
	Role    *string       `json:"role,omitempty"`
	Content []ContentPart `json:"content,omitempty"`

	// Reasoning fields (type="reasoning")
	Summary []SummaryPart `json:"summary,omitempty"`

	// Function call fields (type="function_call")
	Name      *string `json:"name,omitempty"`
	CallID    *string `json:"call_id,omitempty"`
	Arguments *string `json:"arguments,omitempty"`
	Output    *string `json:"output,omitempty"`

	// Search call fields (file_search_call, web_search_call, find_files_call)
	Queries []string       `json:"queries,omitempty"`
	Results []SearchResult `json:"results,omitempty"`

	// File reader fields (file_read_call, page_read_call, list_files_call)
	FileID     *string `json:"file_id,omitempty"`
	Filename   *string `json:"filename,omitempty"`
	PageNumber *int    `json:"page_number,omitempty"`

	// Code interpreter fields (type="code_interpreter_call")
	Code        *string `json:"code,omitempty"`
	ContainerID *string `json:"container_id,omitempty"`
}

// SummaryPart is one ordered fragment of a reasoning summary.
type SummaryPart struct {
	Type string `json:"type"` // "summary_text"
	Text string `json:"text"`
}

// SearchResult is one result attached to a completed search-style call.
type SearchResult struct {
	FileID   *string  `json:"file_id,omitempty"`
	Filename *string  `json:"filename,omitempty"`
	URL      *string  `json:"url,omitempty"`
	Title    *string  `json:"title,omitempty"`
	Score    *float64 `json:"score,omitempty"`
}

// ContentPart represents a part of message content
type ContentPart struct {
	Type string `json:"type"` // "output_text", "text", "refusal"

	Text    *string `json:"text,omitempty"`
	Refusal *string `json:"refusal,omitempty"`

	// Citations attached to this part by tool execution
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Annotation discriminants.
const (
	AnnotationFileCitation = "file_citation"
	AnnotationURLCitation  = "url_citation"
	AnnotationFilePath     = "file_path"
)

// Annotation represents a citation inside message content pointing at a
// source. The citation's display index is not stored here; renderers
// recompute it from traversal order on every render.
type Annotation struct {
	Type string `json:"type"`

	// Span within the content part's text, when the server provides one
	StartIndex *int `json:"start_index,omitempty"`
	EndIndex   *int `json:"end_index,omitempty"`

	// url_citation
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`

	// file_citation
	FileID     *string `json:"file_id,omitempty"`
	Filename   *string `json:"filename,omitempty"`
	PageNumber *int    `json:"page_number,omitempty"`

	// file_path
	Path *string `json:"path,omitempty"`
}

// Label returns a human-readable source description for the citation.
func (a Annotation) Label() string {
	switch a.Type {
	case AnnotationURLCitation:
		if a.Title != "" && a.URL != "" {
			return fmt.Sprintf("%s (%s)", a.Title, a.URL)
		}
		if a.URL != "" {
			return a.URL
		}
		return a.Title
	case AnnotationFileCitation:
		name := strPtrOr(a.Filename, strPtrOr(a.FileID, "file"))
		if a.PageNumber != nil {
			return fmt.Sprintf("%s, p. %d", name, *a.PageNumber)
		}
		return name
	case AnnotationFilePath:
		return strPtrOr(a.Path, strPtrOr(a.FileID, "path"))
	default:
		if a.URL != "" {
			return a.URL
		}
		return strPtrOr(a.FileID, a.Type)
	}
}

// UsageField represents token usage
type UsageField struct {
	InputTokens         int                  `json:"input_tokens"`
	OutputTokens        int                  `json:"output_tokens"`
	TotalTokens         int                  `json:"total_tokens"`
	InputTokensDetails  *InputTokensDetails  `json:"input_tokens_details,omitempty"`
	OutputTokensDetails *OutputTokensDetails `json:"output_tokens_details,omitempty"`
}

// InputTokensDetails provides breakdown of input tokens
type InputTokensDetails struct {
	CachedTokens int `json:"cached_tokens"`
}

// OutputTokensDetails provides breakdown of output tokens
type OutputTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens"`
}

// ErrorField represents error information
type ErrorField struct {
	Type    string  `json:"type"`
	Code    *string `json:"code,omitempty"`
	Message string  `json:"message"`
	Param   *string `json:"param,omitempty"`
}

// IncompleteDetailsField represents why a response is incomplete
type IncompleteDetailsField struct {
	Reason string `json:"reason"` // "max_output_tokens", "content_filter"
}

// IsTerminal reports whether the response status is final.
func (r *Response) IsTerminal() bool {
	switch r.Status {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusIncomplete:
		return true
	}
	return false
}

// OutputText concatenates the text of every output_text content part of
// every message item, in order. This is the text folded into conversation
// history once a turn completes.
func (r *Response) OutputText() string {
	var sb strings.Builder
	for _, item := range r.Output {
		if item.Type != ItemTypeMessage {
			continue
		}
		for _, part := range item.Content {
			if part.Text != nil {
				sb.WriteString(*part.Text)
			}
		}
	}
	return sb.String()
}

// Citations returns every annotation of the response in traversal order:
// output items top to bottom, content parts first to last. Display indices
// are positions in this slice plus one.
func (r *Response) Citations() []Annotation {
	var out []Annotation
	for _, item := range r.Output {
		if item.Type != ItemTypeMessage {
			continue
		}
		for _, part := range item.Content {
			out = append(out, part.Annotations...)
		}
	}
	return out
}

func strPtrOr(p *string, fallback string) string {
	if p != nil && *p != "" {
		return *p
	}
	return fallback
}
