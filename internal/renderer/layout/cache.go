package layout

import "github.com/dshills/quire/internal/engine/format"

// DefaultMaxEntries is the cache capacity used when none is configured.
const DefaultMaxEntries = 150

// Source is a paragraph as seen by the cache. *buffer.Paragraph satisfies
// it.
type Source interface {
	ID() uint64
	Revision() uint64
	Text() string
	Formats() []format.Range
}

// Cache holds computed paragraph layouts with LRU eviction.
//
// Entries are keyed by paragraph ID and validated against the paragraph's
// revision and the wrap width on every read, so an edit or a resize makes
// the entry stale without any explicit invalidation. The cache is owned by
// the editing goroutine and is not safe for concurrent use.
type Cache struct {
	engine     *Engine
	entries    map[uint64]*cacheEntry
	maxEntries int
	clock      uint64

	hits      uint64
	misses    uint64
	evictions uint64
}

type cacheEntry struct {
	layout     *ParagraphLayout
	revision   uint64
	width      float64
	lastAccess uint64
}

// NewCache creates a layout cache. maxEntries <= 0 uses DefaultMaxEntries.
func NewCache(engine *Engine, maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if engine == nil {
		engine = NewEngine(nil)
	}
	return &Cache{
		engine:     engine,
		entries:    make(map[uint64]*cacheEntry),
		maxEntries: maxEntries,
	}
}

// Get returns the layout of p at width, computing it if the cached entry is
// missing or stale.
func (c *Cache) Get(p Source, width float64) *ParagraphLayout {
	if l, ok := c.lookup(p, width); ok {
		c.hits++
		return l
	}
	c.misses++

	l := c.engine.Layout(p.Text(), p.Formats(), width)
	c.clock++
	c.entries[p.ID()] = &cacheEntry{
		layout:     l,
		revision:   p.Revision(),
		width:      width,
		lastAccess: c.clock,
	}
	if len(c.entries) > c.maxEntries {
		c.evict()
	}
	return l
}

// Peek returns the cached layout if it is current, without computing one
// or touching the statistics.
func (c *Cache) Peek(p Source, width float64) (*ParagraphLayout, bool) {
	return c.lookup(p, width)
}

func (c *Cache) lookup(p Source, width float64) (*ParagraphLayout, bool) {
	e, ok := c.entries[p.ID()]
	if !ok || e.revision != p.Revision() || e.width != width {
		return nil, false
	}
	c.clock++
	e.lastAccess = c.clock
	return e.layout, true
}

// Invalidate drops the entry for a paragraph ID.
func (c *Cache) Invalidate(id uint64) {
	delete(c.entries, id)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	clear(c.entries)
}

// evict removes the least recently used entries until the cache fits.
func (c *Cache) evict() {
	for len(c.entries) > c.maxEntries {
		var oldest uint64
		var oldestAccess uint64
		first := true
		for id, e := range c.entries {
			if first || e.lastAccess < oldestAccess {
				oldest, oldestAccess, first = id, e.lastAccess, false
			}
		}
		delete(c.entries, oldest)
		c.evictions++
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Engine returns the layout engine used by this cache.
func (c *Cache) Engine() *Engine {
	return c.engine
}

// SetEngine replaces the layout engine and clears the cache.
func (c *Cache) SetEngine(engine *Engine) {
	if engine == nil {
		return
	}
	c.engine = engine
	c.Clear()
}

// Stats returns cache statistics.
func (c *Cache) Stats() CacheStats {
	var hitRate float64
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	return CacheStats{
		Size:      len(c.entries),
		MaxSize:   c.maxEntries,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		HitRate:   hitRate,
	}
}

// ResetStats resets the cache statistics counters.
func (c *Cache) ResetStats() {
	c.hits, c.misses, c.evictions = 0, 0, 0
}

// CacheStats holds cache statistics.
type CacheStats struct {
	Size      int     // Current number of entries
	MaxSize   int     // Maximum entries allowed
	Hits      uint64  // Number of cache hits
	Misses    uint64  // Number of cache misses
	Evictions uint64  // Number of evicted entries
	HitRate   float64 // Hit rate (0.0 - 1.0)
}
