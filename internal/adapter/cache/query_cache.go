package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"
	"time"

	"corpus/internal/domain"
	"corpus/internal/port"
)

// QueryCache is a bounded LRU of ranking results with a TTL. Entries are tied
// to the index generation that produced them and are dropped once the index
// moves on.
type QueryCache struct {
	mu       sync.RWMutex
	entries  map[string]*cacheEntry
	order    []string
	maxSize  int
	ttl      time.Duration
	indexGen uint64
	now      func() time.Time
}

type cacheEntry struct {
	results   []domain.ScoredDocument
	timestamp time.Time
	indexGen  uint64
}

func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

func cacheKey(query string, topN int, useWeighting bool) string {
	data := []byte(query)
	data = binary.BigEndian.AppendUint64(data, uint64(topN))
	if useWeighting {
		data = append(data, 1)
	} else {
		data = append(data, 0)
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

func (c *QueryCache) Get(query string, topN int, useWeighting bool) ([]domain.ScoredDocument, bool) {
	c.mu.RLock()
	gen := c.indexGen
	c.mu.RUnlock()
	return c.GetAt(gen, query, topN, useWeighting)
}

// GetAt returns a cached result only when it was produced by index
// generation gen and gen is still the generation the cache serves.
func (c *QueryCache) GetAt(gen uint64, query string, topN int, useWeighting bool) ([]domain.ScoredDocument, bool) {
	key := cacheKey(query, topN, useWeighting)

	c.mu.RLock()
	entry, exists := c.entries[key]
	currentGen := c.indexGen
	c.mu.RUnlock()

	if !exists || gen != currentGen {
		return nil, false
	}

	if c.now().Sub(entry.timestamp) > c.ttl || entry.indexGen != currentGen {
		c.mu.Lock()
		if c.entries[key] == entry {
			delete(c.entries, key)
			c.removeFromOrder(key)
		}
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	if _, ok := c.entries[key]; ok {
		c.moveToEnd(key)
	}
	c.mu.Unlock()

	return copyResults(entry.results), true
}

func (c *QueryCache) Put(query string, topN int, useWeighting bool, results []domain.ScoredDocument) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(query, topN, useWeighting, results)
}

// PutAt stores results computed from index generation gen. Results from a
// generation the cache no longer serves are discarded.
func (c *QueryCache) PutAt(gen uint64, query string, topN int, useWeighting bool, results []domain.ScoredDocument) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.indexGen {
		return false
	}
	c.put(query, topN, useWeighting, results)
	return true
}

func (c *QueryCache) put(query string, topN int, useWeighting bool, results []domain.ScoredDocument) {
	key := cacheKey(query, topN, useWeighting)
	entry := &cacheEntry{
		results:   copyResults(results),
		timestamp: c.now(),
		indexGen:  c.indexGen,
	}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = entry
	c.order = append(c.order, key)
}

// Advance records the generation of the index now serving queries. Moving
// to a different generation empties the cache.
func (c *QueryCache) Advance(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.indexGen {
		return
	}
	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
	c.indexGen = gen
}

func (c *QueryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
	c.indexGen++
}

func (c *QueryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *QueryCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *QueryCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *QueryCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func copyResults(results []domain.ScoredDocument) []domain.ScoredDocument {
	out := make([]domain.ScoredDocument, len(results))
	copy(out, results)
	return out
}

// CachedRanker serves repeated queries from a QueryCache.
type CachedRanker struct {
	ranker port.Ranker
	cache  *QueryCache
}

func NewCachedRanker(ranker port.Ranker, cache *QueryCache) *CachedRanker {
	return &CachedRanker{
		ranker: ranker,
		cache:  cache,
	}
}

func (r *CachedRanker) Rank(query string, topN int, useWeighting bool) []domain.ScoredDocument {
	if results, hit := r.cache.Get(query, topN, useWeighting); hit {
		return results
	}

	results := r.ranker.Rank(query, topN, useWeighting)
	r.cache.Put(query, topN, useWeighting, results)

	return results
}
