// Copyright The LibTrace Authors
// SPDX-License-Identifier: Apache-2.0

// Package intern provides an append-only flyweight table that maps values
// to stable small integer ids.
package intern // import "github.com/fdoray/libtrace/intern"

import (
	"sync"
)

// ID is a stable identifier issued by a Table. Ids are dense, starting
// at 0, and never recycled.
type ID uint32

// Table de-duplicates values of a hashable type. Interning is serialized;
// lookups may run concurrently with each other and, once an id has been
// issued, return the same value for the lifetime of the table. There is
// no eviction.
type Table[T comparable] struct {
	mu     sync.RWMutex
	ids    map[T]ID
	values []T
}

// NewTable returns an empty flyweight table.
func NewTable[T comparable]() *Table[T] {
	return &Table[T]{ids: make(map[T]ID)}
}

// Intern returns the id of v, allocating a new one for first sightings.
func (t *Table[T]) Intern(v T) ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.ids[v]; ok {
		return id
	}
	id := ID(len(t.values))
	t.ids[v] = id
	t.values = append(t.values, v)
	return id
}

// Get returns the value for an issued id. The second result is false for
// ids that were never issued.
func (t *Table[T]) Get(id ID) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(id) >= len(t.values) {
		var zero T
		return zero, false
	}
	return t.values[id], true
}

// Len returns the number of interned values.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}
