package docxmerge

import (
	"container/list"
	"fmt"
	"os"
	"sync"
	"time"
)

// CacheConfig contains configuration options for the template cache
type CacheConfig struct {
	// MaxSize is the maximum number of packages to cache. 0 disables caching.
	MaxSize int
	// TTL is the time-to-live for cached packages. 0 means no expiration.
	TTL time.Duration
}

// TemplateCache keeps the raw bytes of template packages keyed by path, so
// repeated renders of one template skip the disk read. Every render still
// opens its own Template from the cached bytes. Entries are dropped when the
// file's size or modification time changes.
type TemplateCache struct {
	mu     sync.Mutex
	cache  map[string]*cacheEntry
	lru    *list.List
	config CacheConfig
}

type cacheEntry struct {
	key     string
	source  []byte
	modTime time.Time
	size    int64
	expiry  time.Time
	element *list.Element
}

// NewTemplateCache creates a new template cache with the global configuration
func NewTemplateCache() *TemplateCache {
	config := GetGlobalConfig()
	return NewTemplateCacheWithConfig(CacheConfig{
		MaxSize: config.CacheMaxSize,
		TTL:     config.CacheTTL,
	})
}

// NewTemplateCacheWithConfig creates a new template cache with the given configuration
func NewTemplateCacheWithConfig(config CacheConfig) *TemplateCache {
	return &TemplateCache{
		cache:  make(map[string]*cacheEntry),
		lru:    list.New(),
		config: config,
	}
}

// Load returns the bytes of the package at path, from cache when the entry
// is still current.
func (tc *TemplateCache) Load(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	if tc.config.MaxSize <= 0 {
		return os.ReadFile(path)
	}

	if source, ok := tc.get(path, info); ok {
		return source, nil
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tc.set(path, source, info)
	return source, nil
}

func (tc *TemplateCache) get(key string, info os.FileInfo) ([]byte, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	entry, ok := tc.cache[key]
	if !ok {
		return nil, false
	}
	expired := tc.config.TTL > 0 && time.Now().After(entry.expiry)
	stale := !entry.modTime.Equal(info.ModTime()) || entry.size != info.Size()
	if expired || stale {
		tc.removeLocked(entry)
		return nil, false
	}
	tc.lru.MoveToFront(entry.element)
	return entry.source, true
}

func (tc *TemplateCache) set(key string, source []byte, info os.FileInfo) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if old, ok := tc.cache[key]; ok {
		tc.removeLocked(old)
	}

	// Evict least recently used
	for tc.lru.Len() >= tc.config.MaxSize {
		oldest := tc.lru.Back()
		if oldest == nil {
			break
		}
		tc.removeLocked(oldest.Value.(*cacheEntry))
	}

	entry := &cacheEntry{
		key:     key,
		source:  source,
		modTime: info.ModTime(),
		size:    info.Size(),
	}
	if tc.config.TTL > 0 {
		entry.expiry = time.Now().Add(tc.config.TTL)
	}
	entry.element = tc.lru.PushFront(entry)
	tc.cache[key] = entry
}

func (tc *TemplateCache) removeLocked(entry *cacheEntry) {
	tc.lru.Remove(entry.element)
	delete(tc.cache, entry.key)
}

// Remove drops the entry for key.
func (tc *TemplateCache) Remove(key string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if entry, ok := tc.cache[key]; ok {
		tc.removeLocked(entry)
	}
}

// Clear removes all entries.
func (tc *TemplateCache) Clear() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.cache = make(map[string]*cacheEntry)
	tc.lru.Init()
}

// Size returns the number of cached packages.
func (tc *TemplateCache) Size() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.lru.Len()
}
