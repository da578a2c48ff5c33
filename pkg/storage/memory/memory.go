// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/leseb/openresponses-cli/pkg/core/state"
	"github.com/leseb/openresponses-cli/pkg/storage"
)

func init() {
	storage.Register("memory", func(ctx context.Context, params map[string]string) (state.ConversationStore, error) {
		return New(), nil
	})
}

// Store is an in-memory implementation of ConversationStore, used by tests
// and as a throwaway backend when persistence is disabled.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*state.Conversation
}

// New creates a new in-memory store
func New() *Store {
	return &Store{
		conversations: make(map[string]*state.Conversation),
	}
}

// Save saves a conversation
func (s *Store) Save(ctx context.Context, conv *state.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *conv
	cp.Turns = append([]state.Turn(nil), conv.Turns...)
	s.conversations[conv.ID] = &cp
	return nil
}

// Load retrieves a conversation by ID
func (s *Store) Load(ctx context.Context, id string) (*state.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, exists := s.conversations[id]
	if !exists {
		return nil, state.ErrNotFound
	}

	cp := *conv
	cp.Turns = append([]state.Turn(nil), conv.Turns...)
	return &cp, nil
}

// List lists all conversations, most recently updated first
func (s *Store) List(ctx context.Context) ([]*state.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	convs := make([]*state.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		convs = append(convs, conv)
	}
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	return convs, nil
}

// Delete deletes a conversation
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.conversations[id]; !exists {
		return state.ErrNotFound
	}
	delete(s.conversations, id)
	return nil
}

// Close is a no-op for the in-memory store
func (s *Store) Close() error {
	return nil
}
