package pdf

import (
	"sync"
	"time"

	"github.com/a3tai/mcp-pdf-layout/internal/layout"
)

// docKey identifies one version of a file on disk
type docKey struct {
	path    string
	size    int64
	modTime time.Time
}

// documentCache keeps the most recently extracted documents so that an
// assessment followed by a reconstruction of the same file extracts once.
// A file that changes on disk gets a new key.
type documentCache struct {
	mu       sync.Mutex
	capacity int
	items    map[docKey]*docNode
	head     *docNode // most recently used
	tail     *docNode // least recently used
	hits     int64
	misses   int64
}

type docNode struct {
	key        docKey
	doc        *layout.Document
	prev, next *docNode
}

// newDocumentCache returns nil for a non-positive capacity, which disables
// caching
func newDocumentCache(capacity int) *documentCache {
	if capacity <= 0 {
		return nil
	}
	c := &documentCache{
		capacity: capacity,
		items:    make(map[docKey]*docNode),
		head:     &docNode{},
		tail:     &docNode{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

func (c *documentCache) get(key docKey) (*layout.Document, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.unlink(node)
	c.pushFront(node)
	c.hits++
	return node.doc, true
}

func (c *documentCache) put(key docKey, doc *layout.Document) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.items[key]; ok {
		node.doc = doc
		c.unlink(node)
		c.pushFront(node)
		return
	}

	// Older versions of the same file can never hit again.
	for k, node := range c.items {
		if k.path == key.path {
			c.unlink(node)
			delete(c.items, k)
		}
	}

	node := &docNode{key: key, doc: doc}
	c.pushFront(node)
	c.items[key] = node
	if len(c.items) > c.capacity {
		lru := c.tail.prev
		c.unlink(lru)
		delete(c.items, lru.key)
	}
}

// stats returns the hit and miss counters, size and capacity. A disabled
// cache reports zeros.
func (c *documentCache) stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Hits:     c.hits,
		Misses:   c.misses,
		Size:     len(c.items),
		Capacity: c.capacity,
	}
}

func (c *documentCache) pushFront(node *docNode) {
	node.prev = c.head
	node.next = c.head.next
	c.head.next.prev = node
	c.head.next = node
}

func (c *documentCache) unlink(node *docNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
}
