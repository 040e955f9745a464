package database

import "sync/atomic"

var defaultManager atomic.Pointer[Manager]

// SetDefault sets the process-wide default manager. Passing nil clears it.
func SetDefault(m *Manager) {
	defaultManager.Store(m)
}

// Default returns the process-wide default manager, or nil.
func Default() *Manager {
	return defaultManager.Load()
}
