// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

// Package state holds the client's only persisted entity: the
// conversation. A conversation outlives every individual response; each
// turn's final text is folded into it once the turn completes.
package state

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a conversation id is unknown.
var ErrNotFound = errors.New("conversation not found")

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is an ordered list of turns plus the settings needed to
// continue it. Never mutated concurrently: one active session owns it.
type Conversation struct {
	ID        string    `json:"id"` // Format: "conv_{uuid}"
	Model     string    `json:"model"`
	Turns     []Turn    `json:"turns"`
	TurnCount int       `json:"turn_count"` // monotonically increasing, survives resume
	Debug     bool      `json:"debug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Turn is one message within a conversation.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`

	// ToolSummary records which tools the assistant invoked this turn,
	// one status line per call. Empty for user turns.
	ToolSummary []string `json:"tool_summary,omitempty"`

	// Citations the assistant's answer referenced, in display order.
	Citations []string `json:"citations,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// AppendTurn adds a turn and advances the counter.
func (c *Conversation) AppendTurn(t Turn) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	c.Turns = append(c.Turns, t)
	c.TurnCount++
	c.UpdatedAt = time.Now()
}

// ConversationStore persists conversations, addressed by opaque id.
type ConversationStore interface {
	Save(ctx context.Context, conv *Conversation) error
	Load(ctx context.Context, id string) (*Conversation, error)
	List(ctx context.Context) ([]*Conversation, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
