package cache

import (
	"container/list"
	"sync"
	"time"
)

// DefaultMaxEntries bounds an InMemoryCache created without a limit.
const DefaultMaxEntries = 1000

type cacheEntry struct {
	key     string
	value   string
	written time.Time
}

// InMemoryCache is a thread-safe bounded cache with TTL support.
// When full, the least recently used entry is evicted.
type InMemoryCache struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	order      *list.List
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewInMemoryCache creates a cache holding at most maxEntries values, each
// valid for ttl. A zero ttl never expires; maxEntries <= 0 uses DefaultMaxEntries.
func NewInMemoryCache(maxEntries int, ttl time.Duration) *InMemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl < 0 {
		ttl = 0
	}
	return &InMemoryCache{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the cached value and whether it was present and fresh.
func (c *InMemoryCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return "", false
	}

	entry := elem.Value.(*cacheEntry)
	if c.expired(entry) {
		c.remove(elem)
		return "", false
	}

	c.order.MoveToFront(elem)
	return entry.value, true
}

// Set stores a value, evicting the least recently used entry when full.
func (c *InMemoryCache) Set(key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.value = value
		entry.written = c.now()
		c.order.MoveToFront(elem)
		return nil
	}

	c.items[key] = c.order.PushFront(&cacheEntry{key: key, value: value, written: c.now()})
	for c.order.Len() > c.maxEntries {
		c.remove(c.order.Back())
	}
	return nil
}

// Len returns the number of entries, including expired ones not yet evicted.
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear removes all entries.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order.Init()
}

func (c *InMemoryCache) expired(entry *cacheEntry) bool {
	return c.ttl > 0 && c.now().Sub(entry.written) > c.ttl
}

func (c *InMemoryCache) remove(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*cacheEntry).key)
}

// Verify InMemoryCache implements TranslationCache
var _ TranslationCache = (*InMemoryCache)(nil)
