package shop

import "sync"

// mirror is the in-memory copy of a collection that readers see. Every
// write carries a ticket; a write from an operation that started before
// the last applied one is dropped.
type mirror[T any] struct {
	mu      sync.RWMutex
	items   []T
	issued  uint64
	applied uint64
	clone   func([]T) []T
}

func newMirror[T any](clone func([]T) []T) *mirror[T] {
	return &mirror[T]{items: []T{}, clone: clone}
}

func (m *mirror[T]) get() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clone(m.items)
}

// ticket reserves an ordering slot for an operation about to start.
func (m *mirror[T]) ticket() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issued++
	return m.issued
}

// begin takes a ticket, snapshots the current items and applies fn.
func (m *mirror[T]) begin(fn func([]T) []T) (before []T, ticket uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.issued++
	before = m.clone(m.items)
	if fn != nil {
		m.items = fn(m.clone(m.items))
	}
	return before, m.issued
}

func (m *mirror[T]) apply(ticket uint64, items []T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ticket < m.applied {
		return false
	}
	m.items = m.clone(items)
	if m.items == nil {
		m.items = []T{}
	}
	m.applied = ticket
	return true
}

// restore puts back a snapshot unless a newer operation already applied
// its result.
func (m *mirror[T]) restore(ticket uint64, before []T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.applied > ticket {
		return
	}
	m.items = before
}

// reset empties the mirror and invalidates every in-flight operation.
func (m *mirror[T]) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.issued++
	m.applied = m.issued
	m.items = []T{}
}
