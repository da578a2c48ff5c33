// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

// Package storage is a registry of pluggable conversation store backends.
// Implementations self-register via init(), following the database/sql
// driver pattern: blank-import a backend package to activate it, then call
// New(name, params) to instantiate.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/leseb/openresponses-cli/pkg/core/state"
)

// Factory is a constructor that creates a store from a string parameter
// map. Implementations extract the keys they need and ignore the rest.
type Factory func(ctx context.Context, params map[string]string) (state.ConversationStore, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register adds a named backend factory. Panics if the name is already
// registered (catches duplicate init() registrations at startup).
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("storage: backend %q already registered", name))
	}
	factories[name] = f
}

// New creates a store instance by backend name.
func New(ctx context.Context, name string, params map[string]string) (state.ConversationStore, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown storage backend: %q (available: %v)", name, Available())
	}
	return f(ctx, params)
}

// Available returns the sorted list of registered backend names.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
