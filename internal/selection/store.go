// Package selection owns the user's folder/subfolder choice and mirrors it
// into durable key-value storage.
package selection

import (
	"log/slog"
	"sync"
)

// Durable storage keys.
const (
	KeyFolder    = "selectedFolder"
	KeySubfolder = "selectedSubfolder"
)

// Store is a string key-value store. A missing key is reported with ok=false
// and is distinct from a key holding the empty string.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements Store.
func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Store.
func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// FallbackStore writes through to a primary Store and keeps an in-memory
// copy. After the first primary failure it serves from memory only for the
// rest of its lifetime.
type FallbackStore struct {
	primary Store
	memory  *MemoryStore
	logger  *slog.Logger

	mu       sync.Mutex
	degraded bool
}

// NewFallbackStore wraps primary. A nil primary starts degraded.
func NewFallbackStore(primary Store, logger *slog.Logger) *FallbackStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackStore{
		primary:  primary,
		memory:   NewMemoryStore(),
		logger:   logger,
		degraded: primary == nil,
	}
}

// Degraded reports whether the store has fallen back to memory.
func (f *FallbackStore) Degraded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.degraded
}

func (f *FallbackStore) usePrimary() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.degraded
}

func (f *FallbackStore) fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.degraded {
		return
	}
	f.degraded = true
	f.logger.Warn("selection: durable storage unavailable, keeping selection in memory",
		slog.String("op", op),
		slog.String("error", err.Error()))
}

// Get implements Store.
func (f *FallbackStore) Get(key string) (string, bool, error) {
	if f.usePrimary() {
		v, ok, err := f.primary.Get(key)
		if err == nil {
			if ok {
				_ = f.memory.Set(key, v)
			} else {
				_ = f.memory.Delete(key)
			}
			return v, ok, nil
		}
		f.fail("get", err)
	}
	return f.memory.Get(key)
}

// Set implements Store.
func (f *FallbackStore) Set(key, value string) error {
	_ = f.memory.Set(key, value)
	if f.usePrimary() {
		if err := f.primary.Set(key, value); err != nil {
			f.fail("set", err)
		}
	}
	return nil
}

// Delete implements Store.
func (f *FallbackStore) Delete(key string) error {
	_ = f.memory.Delete(key)
	if f.usePrimary() {
		if err := f.primary.Delete(key); err != nil {
			f.fail("delete", err)
		}
	}
	return nil
}
