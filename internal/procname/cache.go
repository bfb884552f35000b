// SPDX-License-Identifier: Unlicense OR MIT

// Package procname resolves the foreground window's owning process to
// an executable name, and caches that resolution by process ID.
package procname

import "sync"

// capacity bounds the cache. Eviction keeps insertion order and drops
// the oldest half of entries on overflow rather than reordering on
// Get; pid churn is slow enough that strict LRU buys nothing.
const capacity = 128

type entry struct {
	next, prev *entry
	pid        uint32
	exe        string
}

// Cache is a bounded pid->exe-name cache. The zero value is ready to
// use. Safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	m          map[uint32]*entry
	head, tail *entry
}

func (c *Cache) init() {
	if c.m != nil {
		return
	}
	c.m = make(map[uint32]*entry)
	c.head = new(entry)
	c.tail = new(entry)
	c.head.prev = c.tail
	c.tail.next = c.head
}

// Get returns the cached executable name for pid, if present. A hit
// does not reorder the entry: insertion order is what eviction uses.
func (c *Cache) Get(pid uint32) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.m[pid]; ok {
		return e.exe, true
	}
	return "", false
}

// Put records exe as the resolved name for pid, evicting the oldest
// half of entries (by insertion order) if the cache is at capacity.
func (c *Cache) Put(pid uint32, exe string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.init()
	if old, ok := c.m[pid]; ok {
		c.remove(old)
		delete(c.m, pid)
	}
	e := &entry{pid: pid, exe: exe}
	c.m[pid] = e
	c.insert(e)
	if len(c.m) > capacity {
		c.evictOldestHalf()
	}
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

func (c *Cache) remove(e *entry) {
	e.next.prev = e.prev
	e.prev.next = e.next
}

func (c *Cache) insert(e *entry) {
	e.next = c.head
	e.prev = c.head.prev
	e.prev.next = e
	e.next.prev = e
}

// evictOldestHalf drops the oldest capacity/2 entries in insertion
// order, keeping the cache from thrashing one-for-one at the boundary.
func (c *Cache) evictOldestHalf() {
	drop := capacity / 2
	oldest := c.tail.next
	for i := 0; i < drop && oldest != c.head; i++ {
		next := oldest.next
		c.remove(oldest)
		delete(c.m, oldest.pid)
		oldest = next
	}
}
