package corpus

import (
	"os"
	"sync"
	"time"
)

type cacheKey struct {
	path    string
	size    int64
	modTime time.Time
	opts    Options
}

// Cache memoizes LoadFile. An entry is reused while the file's size and
// modification time are unchanged. Returned slices are shared and must not
// be modified.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	key     cacheKey
	records []Record
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Load returns the records of path, reading the file only when it changed
// since the last call with the same options.
func (c *Cache) Load(path string, opts Options) ([]Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	key := cacheKey{path: path, size: info.Size(), modTime: info.ModTime(), opts: opts}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[path]; ok && e.key == key {
		return e.records, nil
	}

	records, err := LoadFile(path, opts)
	if err != nil {
		return nil, err
	}
	c.entries[path] = cacheEntry{key: key, records: records}
	return records, nil
}

// Len reports how many files are cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
