// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leseb/openresponses-cli/pkg/core/state"
)

func makeConversation(id string) *state.Conversation {
	conv := &state.Conversation{
		ID:        id,
		Model:     "test-model",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	conv.AppendTurn(state.Turn{Role: state.RoleUser, Text: "hello"})
	return conv
}

func TestSaveLoad(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Save(ctx, makeConversation("conv_1")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := s.Load(ctx, "conv_1")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.ID != "conv_1" || got.Model != "test-model" {
		t.Errorf("loaded conversation mismatch: %+v", got)
	}
	if len(got.Turns) != 1 {
		t.Errorf("len(Turns) = %d, want 1", len(got.Turns))
	}
}

func TestLoadNotFound(t *testing.T) {
	s := New()

	_, err := s.Load(context.Background(), "conv_missing")
	if !errors.Is(err, state.ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestLoadReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Save(ctx, makeConversation("conv_1")); err != nil {
		t.Fatal(err)
	}

	first, err := s.Load(ctx, "conv_1")
	if err != nil {
		t.Fatal(err)
	}
	first.Turns[0].Text = "mutated"
	first.AppendTurn(state.Turn{Role: state.RoleAssistant, Text: "extra"})

	second, err := s.Load(ctx, "conv_1")
	if err != nil {
		t.Fatal(err)
	}
	if second.Turns[0].Text != "hello" {
		t.Error("caller mutation leaked into the store")
	}
	if len(second.Turns) != 1 {
		t.Errorf("len(Turns) = %d, want 1", len(second.Turns))
	}
}

func TestList(t *testing.T) {
	s := New()
	ctx := context.Background()

	older := makeConversation("conv_old")
	older.UpdatedAt = time.Now().Add(-time.Hour)
	newer := makeConversation("conv_new")

	if err := s.Save(ctx, older); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, newer); err != nil {
		t.Fatal(err)
	}

	convs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("len(convs) = %d, want 2", len(convs))
	}
	if convs[0].ID != "conv_new" {
		t.Errorf("convs[0].ID = %q, want most recently updated first", convs[0].ID)
	}
}

func TestDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Save(ctx, makeConversation("conv_1")); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "conv_1"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Load(ctx, "conv_1"); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("Load() after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "conv_1"); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("Delete() of missing = %v, want ErrNotFound", err)
	}
}
