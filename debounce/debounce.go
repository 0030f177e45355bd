// Package debounce holds a value whose updates settle only after a quiet period.
package debounce

import (
	"sync"
	"time"
)

/*
State owns a committed value and at most one pending update.

Set replaces the pending value and rearms the timer. When the timer fires,
or Flush is called, the pending value becomes the committed one and onCommit
runs with it. Only the latest update within a burst is ever committed.
*/
type State[T any] struct {
	mu       sync.Mutex
	delay    time.Duration
	value    T
	pending  T
	dirty    bool
	timer    *time.Timer
	seq      uint64
	onCommit func(T)
}

// New returns a State holding initial. onCommit may be nil.
func New[T any](initial T, delay time.Duration, onCommit func(T)) *State[T] {
	return &State[T]{
		delay:    delay,
		value:    initial,
		onCommit: onCommit,
	}
}

// Value returns the last committed value.
func (s *State[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Pending reports whether an update is waiting for its timer.
func (s *State[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Set schedules v, cancelling any update that has not fired yet.
// A non-positive delay commits immediately.
func (s *State[T]) Set(v T) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = v
	s.dirty = true
	s.seq++

	if s.delay <= 0 {
		s.mu.Unlock()
		s.Flush()
		return
	}

	seq := s.seq
	s.timer = time.AfterFunc(s.delay, func() { s.fire(seq) })
	s.mu.Unlock()
}

// fire commits only if no newer Set or Flush happened since the timer was armed.
func (s *State[T]) fire(seq uint64) {
	s.mu.Lock()
	if seq != s.seq || !s.dirty {
		s.mu.Unlock()
		return
	}
	s.commitLocked()
}

// Flush commits the pending update now. It reports whether there was one.
func (s *State[T]) Flush() bool {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return false
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
	s.commitLocked()
	return true
}

// commitLocked is entered with mu held and releases it before calling onCommit.
func (s *State[T]) commitLocked() {
	s.value = s.pending
	s.dirty = false
	s.timer = nil
	v := s.value
	cb := s.onCommit
	s.mu.Unlock()

	if cb != nil {
		cb(v)
	}
}

// Stop drops the pending update without committing it.
func (s *State[T]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	var zero T
	s.pending = zero
	s.dirty = false
	s.seq++
}
