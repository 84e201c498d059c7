// Package memstore is an in-memory store driver used by tests. It implements
// the same contract as the real drivers, including the absence of any
// get-or-create atomicity beyond its own mutex.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"crm-service/pkg/store"
)

// Store holds named tables in memory.
type Store struct {
	mu     sync.Mutex
	tables map[string]*table
}

// New creates an empty in-memory store with the given tables.
func New(tableNames ...string) *Store {
	s := &Store{tables: make(map[string]*table)}
	for _, name := range tableNames {
		s.tables[name] = &table{name: name, store: s}
	}
	return s
}

// Table returns the named table, or store.ErrTableNotFound.
func (s *Store) Table(_ context.Context, name string) (store.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", store.ErrTableNotFound, name)
	}
	return t, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

type table struct {
	name  string
	store *Store
	rows  [][]string
}

func (t *table) Name() string { return t.name }

func (t *table) Rows(_ context.Context) ([][]string, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	out := make([][]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (t *table) Append(_ context.Context, row []string) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.rows = append(t.rows, append([]string(nil), row...))
	return nil
}

func (t *table) Update(_ context.Context, index int, row []string) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if index < 0 || index >= len(t.rows) {
		return fmt.Errorf("%w: row %d out of range in %q", store.ErrWrite, index, t.name)
	}
	t.rows[index] = append([]string(nil), row...)
	return nil
}
