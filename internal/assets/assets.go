// Package assets opens asset containers from disk and caches them for the
// duration of one import.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/BlenderCN-Org/import-valkyria/internal/logger"
	"github.com/BlenderCN-Org/import-valkyria/pkg/encoding"
	"github.com/BlenderCN-Org/import-valkyria/pkg/formats"
)

// ErrNotFound is returned when a referenced file does not exist.
var ErrNotFound = errors.New("file not found")

// Resolver opens containers by path, decoding each absolute path at most
// once. A Resolver belongs to a single import and is not safe for
// concurrent use.
type Resolver struct {
	decoder formats.Decoder
	cache   *Cache

	// Folded name -> on-disk name, per directory.
	dirs map[string]map[string]string
}

// NewResolver creates a resolver decoding files with decoder.
func NewResolver(decoder formats.Decoder) *Resolver {
	return &Resolver{
		decoder: decoder,
		cache:   NewCache(),
		dirs:    make(map[string]map[string]string),
	}
}

// Open returns the container stored at path, decoding it on first use.
func (r *Resolver) Open(path string) (*formats.Container, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	if c, ok := r.cache.Get(abs); ok {
		logger.Debug("container cache hit", zap.String("path", abs))
		return c, nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, abs)
		}
		return nil, fmt.Errorf("reading %s: %w", abs, err)
	}

	c, err := r.decoder.Decode(abs, data)
	if err != nil {
		var corrupt *formats.CorruptContainerError
		if errors.As(err, &corrupt) {
			return nil, err
		}
		return nil, &formats.CorruptContainerError{Path: abs, Err: err}
	}

	logger.Debug("container decoded",
		zap.String("path", abs),
		zap.Stringer("schema", c.Schema),
		zap.Int("sections", len(c.Children)))

	r.cache.Set(abs, c)
	return c, nil
}

// Sibling opens a file referenced by from, looked up case-insensitively in
// the directory from was read from.
func (r *Resolver) Sibling(from *formats.Container, name string) (*formats.Container, error) {
	path, err := r.Find(filepath.Dir(from.Path), name)
	if err != nil {
		return nil, err
	}
	return r.Open(path)
}

// Find returns the path of name inside dir, matching case-insensitively when
// no exact match exists.
func (r *Resolver) Find(dir, name string) (string, error) {
	exact := filepath.Join(dir, name)
	if _, err := os.Stat(exact); err == nil {
		return exact, nil
	}

	index, err := r.dirIndex(dir)
	if err != nil {
		return "", err
	}
	if actual, ok := index[encoding.FoldName(name)]; ok {
		return filepath.Join(dir, actual), nil
	}
	return "", fmt.Errorf("%w: %s in %s", ErrNotFound, name, dir)
}

func (r *Resolver) dirIndex(dir string) (map[string]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	if index, ok := r.dirs[abs]; ok {
		return index, nil
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", abs, err)
	}

	index := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		key := encoding.FoldName(e.Name())
		if _, dup := index[key]; !dup {
			index[key] = e.Name()
		}
	}
	r.dirs[abs] = index
	return index, nil
}

// Classify returns the schema tag of a container.
func Classify(c *formats.Container) formats.Schema {
	if c == nil {
		return ""
	}
	return c.Schema
}

// Stats returns container cache statistics.
func (r *Resolver) Stats() (hits, misses int) {
	return r.cache.Stats()
}

// Len returns the number of decoded containers.
func (r *Resolver) Len() int {
	return r.cache.Len()
}

// Reset drops every cached container and directory index.
func (r *Resolver) Reset() {
	r.cache.Clear()
	r.dirs = make(map[string]map[string]string)
}

// Cache holds decoded containers keyed by absolute path.
type Cache struct {
	data map[string]*formats.Container

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*formats.Container),
	}
}

// Get retrieves a container from cache.
func (c *Cache) Get(key string) (*formats.Container, bool) {
	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores a container in cache.
func (c *Cache) Set(key string, data *formats.Container) {
	c.data[key] = data
}

// Len returns the number of cached containers.
func (c *Cache) Len() int {
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.data = make(map[string]*formats.Container)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	return c.hits, c.misses
}
