// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/leseb/openresponses-cli/pkg/core/state"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "conversations.db"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv := &state.Conversation{ID: "conv_rt", Model: "test-model", Debug: true}
	conv.AppendTurn(state.Turn{Role: state.RoleUser, Text: "hello"})
	conv.AppendTurn(state.Turn{Role: state.RoleAssistant, Text: "hi", Citations: []string{"somewhere"}})

	if err := s.Save(ctx, conv); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := s.Load(ctx, "conv_rt")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Model != "test-model" || !got.Debug {
		t.Errorf("loaded conversation mismatch: %+v", got)
	}
	if len(got.Turns) != 2 || got.Turns[1].Citations[0] != "somewhere" {
		t.Errorf("turns not preserved: %+v", got.Turns)
	}
	if got.TurnCount != 2 {
		t.Errorf("TurnCount = %d, want 2", got.TurnCount)
	}
}

func TestSaveUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv := &state.Conversation{ID: "conv_up", Model: "m"}
	conv.AppendTurn(state.Turn{Role: state.RoleUser, Text: "one"})
	if err := s.Save(ctx, conv); err != nil {
		t.Fatal(err)
	}

	conv.AppendTurn(state.Turn{Role: state.RoleAssistant, Text: "two"})
	if err := s.Save(ctx, conv); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(ctx, "conv_up")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Turns) != 2 {
		t.Errorf("len(Turns) = %d after upsert, want 2", len(got.Turns))
	}
}

func TestLoadNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load(context.Background(), "conv_missing")
	if !errors.Is(err, state.ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, &state.Conversation{ID: "conv_a", Model: "m"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, &state.Conversation{ID: "conv_b", Model: "m"}); err != nil {
		t.Fatal(err)
	}

	convs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("len(convs) = %d, want 2", len(convs))
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, &state.Conversation{ID: "conv_del", Model: "m"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "conv_del"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := s.Delete(ctx, "conv_del"); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("Delete() of missing = %v, want ErrNotFound", err)
	}
}
