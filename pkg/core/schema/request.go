// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import "fmt"

// ResponseRequest represents a request to the /v1/responses endpoint.
// The client always sends the full prior turn history as Input so the
// server has complete context.
type ResponseRequest struct {
	// Model ID used to generate the response
	Model *string `json:"model,omitempty"`

	// Ordered input items, oldest first
	Input []InputMessage `json:"input,omitempty"`

	// Previous response ID for multi-turn conversations
	PreviousResponseID *string `json:"previous_response_id,omitempty"`

	// Server-side conversation ID (mutually exclusive with previous_response_id)
	Conversation *string `json:"conversation,omitempty"`

	// Tools available for the model to use
	Tools []ResponsesToolParam `json:"tools,omitempty"`

	// Instructions (system message)
	Instructions *string `json:"instructions,omitempty"`

	// Reasoning configuration
	Reasoning *ReasoningParam `json:"reasoning,omitempty"`

	// Sampling parameters
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"top_p,omitempty"`
	MaxOutputTokens *int     `json:"max_output_tokens,omitempty"`

	// Whether the server should persist the response
	Store *bool `json:"store,omitempty"`

	// Whether to stream the response over SSE
	Stream bool `json:"stream,omitempty"`
}

// InputMessage is one prior turn carried in the request input.
type InputMessage struct {
	Type    string `json:"type"` // always "message"
	Role    string `json:"role"` // "user", "assistant", "system", "developer"
	Content string `json:"content"`
}

// NewInputMessage builds a history item for the request input.
func NewInputMessage(role, content string) InputMessage {
	return InputMessage{Type: "message", Role: role, Content: content}
}

// ResponsesToolParam represents a tool definition (request side).
type ResponsesToolParam struct {
	Type string `json:"type"` // "function", "file_search", "web_search", "code_interpreter"

	// Function fields (type="function")
	Name        string                 `json:"name,omitempty"`
	Description *string                `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
	Strict      *bool                  `json:"strict,omitempty"`

	// Web search fields (type="web_search")
	SearchContextSize *string `json:"search_context_size,omitempty"`

	// File search fields (type="file_search")
	VectorStoreIDs []string `json:"vector_store_ids,omitempty"`
	MaxNumResults  *int     `json:"max_num_results,omitempty"`
}

// ResponsesTool represents a tool echoed back on the response.
type ResponsesTool struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// ReasoningParam represents reasoning configuration.
type ReasoningParam struct {
	Effort  *string `json:"effort,omitempty"`  // "low", "medium", "high"
	Summary *string `json:"summary,omitempty"` // "auto", "concise", "detailed"
}

// Validate validates the request before it is handed to the transport.
func (r *ResponseRequest) Validate() error {
	if r.Model == nil || *r.Model == "" {
		return fmt.Errorf("model is required")
	}
	if len(r.Input) == 0 {
		return fmt.Errorf("input is required")
	}
	if r.Conversation != nil && *r.Conversation != "" &&
		r.PreviousResponseID != nil && *r.PreviousResponseID != "" {
		return fmt.Errorf("'conversation' and 'previous_response_id' are mutually exclusive")
	}
	return nil
}
