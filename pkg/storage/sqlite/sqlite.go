// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/leseb/openresponses-cli/pkg/core/state"
	"github.com/leseb/openresponses-cli/pkg/storage"

	_ "modernc.org/sqlite"
)

func init() {
	storage.Register("sqlite", func(ctx context.Context, params map[string]string) (state.ConversationStore, error) {
		return New(params["path"])
	})
}

// Store is a SQLite-backed implementation of ConversationStore, for users
// who want queryable local history instead of loose JSON documents.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store at the given path, creating parent
// directories and the schema as needed.
func New(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, ".openresponses-cli", "conversations.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		model TEXT NOT NULL DEFAULT '',
		turn_count INTEGER NOT NULL DEFAULT 0,
		debug INTEGER NOT NULL DEFAULT 0,
		turns TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("sqlite create tables: %w", err)
	}
	return nil
}

// Save upserts a conversation.
func (s *Store) Save(ctx context.Context, conv *state.Conversation) error {
	turns, err := json.Marshal(conv.Turns)
	if err != nil {
		return fmt.Errorf("marshal turns: %w", err)
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now()
	}
	conv.UpdatedAt = time.Now()

	_, err = s.db.ExecContext(ctx, `INSERT INTO conversations
		(id, model, turn_count, debug, turns, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			model = excluded.model,
			turn_count = excluded.turn_count,
			debug = excluded.debug,
			turns = excluded.turns,
			updated_at = excluded.updated_at`,
		conv.ID, conv.Model, conv.TurnCount, boolToInt(conv.Debug), string(turns),
		conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sqlite save conversation: %w", err)
	}
	return nil
}

// Load retrieves a conversation by id.
func (s *Store) Load(ctx context.Context, id string) (*state.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, model, turn_count, debug, turns, created_at, updated_at
		FROM conversations WHERE id = ?`, id)
	return scanConversation(row)
}

// List returns all conversations, most recently updated first.
func (s *Store) List(ctx context.Context) ([]*state.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, model, turn_count, debug, turns, created_at, updated_at
		FROM conversations ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite list conversations: %w", err)
	}
	defer rows.Close()

	var convs []*state.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	return convs, rows.Err()
}

// Delete removes a conversation.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite delete conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return state.ErrNotFound
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanConversation(row scannable) (*state.Conversation, error) {
	var (
		conv  state.Conversation
		turns string
		debug int
	)
	err := row.Scan(&conv.ID, &conv.Model, &conv.TurnCount, &debug, &turns, &conv.CreatedAt, &conv.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, state.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite scan conversation: %w", err)
	}
	if err := json.Unmarshal([]byte(turns), &conv.Turns); err != nil {
		return nil, fmt.Errorf("conversation %s is corrupt: %w", conv.ID, err)
	}
	conv.Debug = debug != 0
	return &conv, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
