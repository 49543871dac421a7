// Package mailbox provides a bounded, single-slot container for deferred
// work. Unlike a queue, putting a new value overwrites whatever was parked
// before: only the most recent intent survives until it is taken or cleared.
package mailbox

import "sync"

// Mailbox holds at most one value of type T. All methods are safe for
// concurrent use.
type Mailbox[T any] struct {
	mu    sync.Mutex
	value T
	full  bool
}

// New returns an empty mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{}
}

// Put stores a value, replacing any previously parked one.
// Returns true when an existing value was overwritten.
func (m *Mailbox[T]) Put(v T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	replaced := m.full
	m.value = v
	m.full = true
	return replaced
}

// Take removes and returns the parked value. The second return is false when
// the mailbox was empty.
func (m *Mailbox[T]) Take() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.full {
		var zero T
		return zero, false
	}
	v := m.value
	var zero T
	m.value = zero
	m.full = false
	return v, true
}

// Peek returns the parked value without removing it.
func (m *Mailbox[T]) Peek() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.full {
		var zero T
		return zero, false
	}
	return m.value, true
}

// Clear discards any parked value.
func (m *Mailbox[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	m.value = zero
	m.full = false
}

// Empty reports whether the mailbox holds no value.
func (m *Mailbox[T]) Empty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.full
}
