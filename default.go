package cache

import "sync/atomic"

// The shared Manager used by queries and preloads when none is injected.
var shared atomic.Pointer[Manager]

func init() {
	shared.Store(New(Config{}, WithName("shared")))
}

// Default returns the process-wide shared Manager.
func Default() *Manager {
	return shared.Load()
}

// SetDefault replaces the shared Manager. A nil m is ignored.
func SetDefault(m *Manager) {
	if m != nil {
		shared.Store(m)
	}
}

// ResetDefault clears the shared Manager. Tests call it between cases.
func ResetDefault() {
	Default().Clear()
}
