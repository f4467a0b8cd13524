package engine

import (
	"container/list"
	"sync"
)

// domainCache is a small LRU memoizing url -> extracted domain so repeat
// visits to the same host skip the regex work.
type domainCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type domainEntry struct {
	url    string
	domain string
}

func newDomainCache(capacity int) *domainCache {
	if capacity <= 0 {
		capacity = 100
	}
	return &domainCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

func (c *domainCache) get(url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[url]
	if !ok {
		return "", false
	}
	c.order.MoveToFront(el)
	return el.Value.(*domainEntry).domain, true
}

func (c *domainCache) put(url, domain string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[url]; ok {
		el.Value.(*domainEntry).domain = domain
		c.order.MoveToFront(el)
		return
	}
	c.entries[url] = c.order.PushFront(&domainEntry{url: url, domain: domain})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*domainEntry).url)
	}
}

func (c *domainCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
