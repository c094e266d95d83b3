package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
)

type cacheKey struct {
	path    string
	country string
}

// Cache memoizes loaded datasets per source path and country.
//
// An entry is valid while the file's size and modification time are
// unchanged. Cached datasets are shared between callers and must not be
// modified.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]*Dataset

	// loadMu serializes fresh loads so concurrent misses read the file once.
	loadMu sync.Mutex

	load func(path string, opts LoadOptions) (*Dataset, error)
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[cacheKey]*Dataset),
		load:    LoadFile,
	}
}

// Get returns the dataset for path, loading it when there is no entry or the
// file changed since the entry was made. fresh reports whether this call
// performed the load. A failed load evicts any previous entry.
func (c *Cache) Get(ctx context.Context, path string, opts LoadOptions) (ds *Dataset, fresh bool, err error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	key := cacheKey{path: path, country: opts.country()}

	sig, err := stat(path)
	if err != nil {
		c.Invalidate(path)
		return nil, false, err
	}

	if ds := c.lookup(key, sig); ds != nil {
		return ds, false, nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	// Another caller may have loaded it while we waited.
	if ds := c.lookup(key, sig); ds != nil {
		return ds, false, nil
	}

	ds, err = c.load(path, opts)
	if err != nil {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, err
	}

	// The file may have changed between stat and read. Key the entry on the
	// signature seen before the read so the next call reloads.
	ds.Source = sig

	c.mu.Lock()
	c.entries[key] = ds
	c.mu.Unlock()

	return ds, true, nil
}

// Invalidate drops every entry for path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.path == path {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of cached datasets.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lookup(key cacheKey, sig Signature) *Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ds, ok := c.entries[key]
	if !ok || !ds.Source.Equal(sig) {
		return nil
	}
	return ds
}

func stat(path string) (Signature, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Signature{}, loadError(path, ErrSourceNotFound)
		}
		return Signature{}, loadError(path, err)
	}
	if info.IsDir() {
		return Signature{}, loadError(path, fmt.Errorf("is a directory: %w", ErrSourceNotFound))
	}
	return Signature{Path: path, Size: info.Size(), ModTime: info.ModTime()}, nil
}
