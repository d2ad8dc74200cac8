// Package assets handles content file loading and caching.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/vandals/internal/logger"
)

// ErrNotFound is returned when no root holds the requested file.
var ErrNotFound = errors.New("asset not found")

type root struct {
	name string
	fsys fs.FS
}

// Manager loads files from layered content roots.
// Roots are searched in reverse order (last added = highest priority).
type Manager struct {
	roots []root
	cache *Cache
	mu    sync.RWMutex
	log   *zap.Logger
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
		log:   logger.Named("assets"),
	}
}

// AddDir adds a directory on disk as a content root.
func (m *Manager) AddDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("opening content dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("opening content dir %s: not a directory", dir)
	}
	m.AddFS(dir, os.DirFS(dir))
	return nil
}

// AddFS adds a file system as a content root.
func (m *Manager) AddFS(name string, fsys fs.FS) {
	m.mu.Lock()
	m.roots = append(m.roots, root{name: name, fsys: fsys})
	m.mu.Unlock()
	m.log.Debug("content root added", zap.String("root", name))
}

// Load reads a file by its slash-separated path relative to the roots.
func (m *Manager) Load(name string) ([]byte, error) {
	name = clean(name)
	if data, ok := m.cache.Get(name); ok {
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.roots) - 1; i >= 0; i-- {
		data, err := fs.ReadFile(m.roots[i].fsys, name)
		if err == nil {
			m.cache.Set(name, data)
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s from %s: %w", name, m.roots[i].name, err)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Exists reports whether any root holds name.
func (m *Manager) Exists(name string) bool {
	name = clean(name)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.roots {
		if _, err := fs.Stat(r.fsys, name); err == nil {
			return true
		}
	}
	return false
}

// List returns the files in dir with the given extension across all roots,
// sorted and without duplicates. A dir missing from every root is empty.
func (m *Manager) List(dir, ext string) ([]string, error) {
	dir = clean(dir)
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	for _, r := range m.roots {
		entries, err := fs.ReadDir(r.fsys, dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("listing %s in %s: %w", dir, r.name, err)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ext) {
				seen[path.Join(dir, e.Name())] = true
			}
		}
	}

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

// Roots returns the root names in search order.
func (m *Manager) Roots() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.roots))
	for i := len(m.roots) - 1; i >= 0; i-- {
		names = append(names, m.roots[i].name)
	}
	return names
}

// Cache exposes the byte cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}

// Close drops all roots and cached data.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roots = nil
	m.cache.Clear()
}

func clean(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" {
		return "."
	}
	return name
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

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
