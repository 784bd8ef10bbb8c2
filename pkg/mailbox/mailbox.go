// Package mailbox provides a single-slot, overwrite-on-put mailbox.
//
// Producers never block: a Put replaces whatever value is still waiting and
// counts it as dropped. The consumer always sees the latest value. The
// scheduler uses it as its command inbox (last writer wins) and the
// transport uses it to coalesce position updates for the UI.
package mailbox

import (
	"context"
	"sync"
	"sync/atomic"
)

// Mailbox holds at most one pending value.
type Mailbox[T any] struct {
	mu    sync.Mutex
	value T
	full  bool
	ready chan struct{}
	drops atomic.Uint64
}

// New creates an empty mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{ready: make(chan struct{}, 1)}
}

// Put stores v, replacing any value not yet taken. It reports whether a
// pending value was replaced.
func (m *Mailbox[T]) Put(v T) bool {
	m.mu.Lock()
	replaced := m.full
	m.value = v
	m.full = true
	m.mu.Unlock()

	if replaced {
		m.drops.Add(1)
	}
	select {
	case m.ready <- struct{}{}:
	default:
	}
	return replaced
}

// TryTake removes and returns the pending value without blocking.
func (m *Mailbox[T]) TryTake() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if !m.full {
		return zero, false
	}
	v := m.value
	m.value = zero
	m.full = false
	return v, true
}

// Take blocks until a value is available or ctx is done.
func (m *Mailbox[T]) Take(ctx context.Context) (T, error) {
	for {
		if v, ok := m.TryTake(); ok {
			return v, nil
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-m.ready:
		}
	}
}

// Ready is signalled after every Put. A signal may be stale; follow it with
// TryTake.
func (m *Mailbox[T]) Ready() <-chan struct{} {
	return m.ready
}

// Pending reports whether a value is waiting.
func (m *Mailbox[T]) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.full
}

// Drops returns how many values were overwritten before being taken.
func (m *Mailbox[T]) Drops() uint64 {
	return m.drops.Load()
}
