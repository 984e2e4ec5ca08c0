// Package sessionlock provides per-key mutual exclusion. All roster and
// attendance writes for one session id go through the same lock, so capacity
// checks and state transitions for that session are totally ordered while
// unrelated sessions proceed in parallel.
package sessionlock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// Table hands out one mutex per key. Entries are reference-counted and
// removed when the last holder unlocks, so the table stays bounded by the
// number of sessions with in-flight mutations.
type Table struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// NewTable returns an empty lock table.
func NewTable() *Table {
	return &Table{locks: make(map[string]*entry)}
}

// Lock acquires the mutex for key, blocking until it is available.
// The returned function releases it and must be called exactly once.
func (t *Table) Lock(key string) (unlock func()) {
	t.mu.Lock()
	e, ok := t.locks[key]
	if !ok {
		e = &entry{}
		t.locks[key] = e
	}
	e.refs++
	t.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		t.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(t.locks, key)
		}
		t.mu.Unlock()
	}
}
