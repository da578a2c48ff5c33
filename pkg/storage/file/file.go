// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leseb/openresponses-cli/pkg/core/state"
	"github.com/leseb/openresponses-cli/pkg/storage"
)

func init() {
	storage.Register("file", func(ctx context.Context, params map[string]string) (state.ConversationStore, error) {
		return New(params["dir"])
	})
}

// Store persists each conversation as one human-readable JSON document
// under a data directory, named "<id>.json". This is the default backend.
type Store struct {
	dir string
}

// New creates a file store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".openresponses-cli", "conversations")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes the conversation document atomically: write a temp file,
// then rename over the target.
func (s *Store) Save(ctx context.Context, conv *state.Conversation) error {
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}

	tmp := s.path(conv.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write conversation: %w", err)
	}
	if err := os.Rename(tmp, s.path(conv.ID)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write conversation: %w", err)
	}
	return nil
}

// Load reads a conversation document by id. A missing file maps to
// state.ErrNotFound; a corrupt document is surfaced as an error, never
// silently replaced with an empty conversation.
func (s *Store) Load(ctx context.Context, id string) (*state.Conversation, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, state.ErrNotFound
		}
		return nil, fmt.Errorf("read conversation %s: %w", id, err)
	}

	var conv state.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("conversation %s is corrupt: %w", id, err)
	}
	if conv.ID == "" {
		conv.ID = id
	}
	return &conv, nil
}

// List loads every conversation document in the data dir, most recently
// updated first. Corrupt documents are skipped here (unlike Load, where
// the caller asked for that specific conversation).
func (s *Store) List(ctx context.Context) ([]*state.Conversation, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var convs []*state.Conversation
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		conv, err := s.Load(ctx, id)
		if err != nil {
			continue
		}
		convs = append(convs, conv)
	}
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	return convs, nil
}

// Delete removes a conversation document.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return state.ErrNotFound
		}
		return fmt.Errorf("delete conversation %s: %w", id, err)
	}
	return nil
}

// Close is a no-op for the file store.
func (s *Store) Close() error {
	return nil
}
