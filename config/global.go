package config

import (
	"sync"
)

var (
	globalManager *Manager
	globalOnce    sync.Once
	globalMutex   sync.RWMutex
)

// InitGlobal initializes the process-wide configuration manager. Safe to call
// more than once; only the first call takes effect.
func InitGlobal() error {
	var err error
	globalOnce.Do(func() {
		var m *Manager
		m, err = NewManager()
		if err == nil {
			globalMutex.Lock()
			globalManager = m
			globalMutex.Unlock()
		}
	})
	return err
}

// Get returns a configuration value from the global manager, or "" when the
// manager is not initialized or the key is absent.
func Get(key string) string {
	globalMutex.RLock()
	m := globalManager
	globalMutex.RUnlock()
	if m == nil {
		return ""
	}
	return m.Get(key)
}

// GetWithDefault returns a configuration value with a fallback default.
func GetWithDefault(key, defaultValue string) string {
	globalMutex.RLock()
	m := globalManager
	globalMutex.RUnlock()
	if m == nil {
		return defaultValue
	}
	return m.GetWithDefault(key, defaultValue)
}

// SetGlobal replaces the global manager. Intended for tests.
func SetGlobal(m *Manager) {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	globalManager = m
}

// IsInitialized reports whether the global manager has been set up.
func IsInitialized() bool {
	globalMutex.RLock()
	defer globalMutex.RUnlock()
	return globalManager != nil
}
