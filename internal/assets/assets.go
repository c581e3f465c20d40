// Package assets handles source file loading and caching.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mitchellh/go-homedir"
)

// Manager loads source files relative to a root directory. Files are
// cached by absolute path, so two references to the same file read it once.
type Manager struct {
	root  string
	cache *Cache[[]byte]
}

// NewManager creates a manager resolving relative paths against root.
func NewManager(root string) *Manager {
	return &Manager{
		root:  root,
		cache: NewCache[[]byte](),
	}
}

// Resolve returns the absolute path of a source reference.
func (m *Manager) Resolve(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", path, err)
	}
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(m.root, expanded)
	}
	return filepath.Abs(expanded)
}

// Load reads a file, returning its absolute path and contents.
func (m *Manager) Load(path string) (string, []byte, error) {
	abs, err := m.Resolve(path)
	if err != nil {
		return "", nil, err
	}

	// Check cache first
	if data, ok := m.cache.Get(abs); ok {
		return abs, data, nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return abs, nil, fmt.Errorf("file not found: %s: %w", path, err)
	}
	m.cache.Set(abs, data)
	return abs, data, nil
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Close drops all cached files.
func (m *Manager) Close() {
	m.cache.Clear()
}

// Cache is a simple in-memory cache keyed by absolute path.
type Cache[V any] struct {
	data map[string]V
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache[V any]() *Cache[V] {
	return &Cache[V]{
		data: make(map[string]V),
	}
}

// Get retrieves an item from cache.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Set stores an item in cache.
func (c *Cache[V]) Set(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = v
}

// Len returns the number of cached items.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]V)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache[V]) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
