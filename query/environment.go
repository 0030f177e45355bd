package query

import "sync"

/*
Environment is the host capability a Query needs to react to focus changes.
A browser host would wire this to window focus; a CLI or test wires a FocusEmitter.
*/
type Environment interface {

	// OnFocus registers fn to run whenever the host regains focus.
	// The returned function removes the registration.
	OnFocus(fn func()) (unsubscribe func())
}

// FocusEmitter is an in-process Environment. Focus calls every subscriber.
type FocusEmitter struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

// NewFocusEmitter returns an emitter with no subscribers.
func NewFocusEmitter() *FocusEmitter {
	return &FocusEmitter{subs: make(map[int]func())}
}

func (e *FocusEmitter) OnFocus(fn func()) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.next
	e.next++
	e.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
		})
	}
}

// Focus runs the subscribers synchronously, outside the emitter's lock.
func (e *FocusEmitter) Focus() {
	e.mu.Lock()
	fns := make([]func(), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Subscribers returns the number of live registrations.
func (e *FocusEmitter) Subscribers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}
