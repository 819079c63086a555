// Package assets resolves and loads files referenced by a mesh, such as
// material libraries and textures, from a list of search roots.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/mitchellh/go-homedir"

	"github.com/yuravashuk/GPF/pkg/encoding"
)

// ErrNotFound is returned when no root holds the requested file.
var ErrNotFound = errors.New("asset not found")

// Manager handles asset lookup across search roots.
type Manager struct {
	roots []string
	cache *Cache
	mu    sync.RWMutex
}

// NewManager creates a new asset manager searching the given roots.
// A leading ~ in a root is expanded to the user's home directory.
func NewManager(roots ...string) (*Manager, error) {
	m := &Manager{
		cache: NewCache(),
	}
	for _, r := range roots {
		if err := m.AddRoot(r); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// AddRoot appends a search root.
// Roots are searched in the order added (first added = highest priority).
func (m *Manager) AddRoot(root string) error {
	if root == "" {
		return nil
	}
	expanded, err := homedir.Expand(root)
	if err != nil {
		return fmt.Errorf("expanding root %s: %w", root, err)
	}

	m.mu.Lock()
	m.roots = append(m.roots, filepath.Clean(expanded))
	m.mu.Unlock()

	return nil
}

// Roots returns the search roots in priority order.
func (m *Manager) Roots() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.roots...)
}

// Resolve returns the path of the file a reference names.
// Backslashes in name are treated as separators. When the reference itself
// is not found under any root, its base name is tried, since exporters often
// write paths from the authoring machine.
func (m *Manager) Resolve(name string) (string, error) {
	ref := encoding.NormalizePath(name)
	if ref == "" {
		return "", fmt.Errorf("%w: empty reference", ErrNotFound)
	}

	if filepath.IsAbs(filepath.FromSlash(ref)) {
		if isFile(filepath.FromSlash(ref)) {
			return filepath.FromSlash(ref), nil
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	candidates := []string{ref}
	if base := path.Base(ref); base != ref {
		candidates = append(candidates, base)
	}
	for _, c := range candidates {
		for _, root := range m.roots {
			p := filepath.Join(root, filepath.FromSlash(c))
			if isFile(p) {
				return p, nil
			}
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Load resolves and reads a file, caching its contents by resolved path.
func (m *Manager) Load(name string) ([]byte, error) {
	p, err := m.Resolve(name)
	if err != nil {
		return nil, err
	}

	// Check cache first
	if data, ok := m.cache.Get(p); ok {
		return data, nil
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	m.cache.Set(p, data)
	return data, nil
}

// Cache returns the manager's content cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Delete drops one item, e.g. after the file changed on disk.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Len returns the number of cached items.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
