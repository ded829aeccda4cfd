// Package cache provides the content-addressed compilation cache with TTL
// expiry and LRU eviction wrapping the orchestrator, so unchanged templates
// are never recompiled.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"
	"time"

	"github.com/isleforge/isleforge/internal/types"
)

// TemplateCache caches compilation results keyed by a hash of the input
// content. Safe for concurrent use from multiple request goroutines.
type TemplateCache struct {
	entries    map[string]*Entry
	mutex      sync.Mutex
	maxEntries int
	ttl        time.Duration
	version    string
	// LRU doubly-linked list with dummy head and tail
	head *Entry
	tail *Entry
	// Statistics (atomic for lock-free reads)
	hits              int64
	misses            int64
	evictions         int64
	compileCount      int64
	totalCompileNanos int64
}

// Entry is one cached compilation result.
type Entry struct {
	Key          string
	Result       *types.CompilationResult
	Hash         string
	CachedAt     time.Time
	LastAccessed time.Time
	prev         *Entry
	next         *Entry
}

// Stats is the aggregate metrics snapshot.
type Stats struct {
	Hits             int64   `json:"hits"`
	Misses           int64   `json:"misses"`
	HitRate          float64 `json:"hitRate"`
	AvgCompilationMs float64 `json:"avgCompilationMs"`
	CacheSize        int     `json:"cacheSize"`
	MaxCacheSize     int     `json:"maxCacheSize"`
}

// NewTemplateCache creates a cache bounded to maxEntries results, each
// living at most ttl. version participates in every key so a compiler
// upgrade invalidates all previous entries.
func NewTemplateCache(maxEntries int, ttl time.Duration, version string) *TemplateCache {
	tc := &TemplateCache{
		entries:    make(map[string]*Entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		version:    version,
	}
	tc.head = &Entry{}
	tc.tail = &Entry{}
	tc.head.next = tc.tail
	tc.tail.prev = tc.head
	return tc
}

// Key computes the content-addressed cache key: the compiler version joined
// with the first 16 hex characters of the content's SHA-256.
func (tc *TemplateCache) Key(content string) string {
	sum := sha256.Sum256([]byte(content))
	return tc.version + "-" + hex.EncodeToString(sum[:])[:16]
}

// GetCompiledTemplateWithMetrics returns the cached result for content when
// a live entry exists, otherwise invokes compile, times it, and caches a
// successful result. Failed compilations are returned but never cached, so
// they are always retried. A lazy sweep removes expired entries first.
func (tc *TemplateCache) GetCompiledTemplateWithMetrics(content string, compile func() (*types.CompilationResult, error)) (*types.CompilationResult, error) {
	key := tc.Key(content)

	tc.mutex.Lock()
	tc.sweepExpiredLocked()

	if entry, exists := tc.entries[key]; exists {
		entry.LastAccessed = time.Now()
		tc.moveToFront(entry)
		result := entry.Result
		tc.mutex.Unlock()
		atomic.AddInt64(&tc.hits, 1)
		return result, nil
	}
	tc.mutex.Unlock()

	atomic.AddInt64(&tc.misses, 1)

	start := time.Now()
	result, err := compile()
	elapsed := time.Since(start)

	atomic.AddInt64(&tc.compileCount, 1)
	atomic.AddInt64(&tc.totalCompileNanos, elapsed.Nanoseconds())

	if err != nil {
		return nil, err
	}
	if result == nil || !result.Success {
		return result, nil
	}

	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	// Another goroutine may have compiled the same content meanwhile; the
	// result is deterministic, so either copy is equally valid.
	if _, exists := tc.entries[key]; !exists {
		now := time.Now()
		entry := &Entry{
			Key:          key,
			Result:       result,
			Hash:         key,
			CachedAt:     now,
			LastAccessed: now,
		}
		tc.entries[key] = entry
		tc.addToFront(entry)
		tc.evictIfNeededLocked()
	}

	return result, nil
}

// sweepExpiredLocked removes entries past their TTL. Called with the mutex
// held on every cache access; the table is small enough that a linear pass
// is cheaper than a timer goroutine.
func (tc *TemplateCache) sweepExpiredLocked() {
	now := time.Now()
	for key, entry := range tc.entries {
		if now.Sub(entry.CachedAt) > tc.ttl {
			tc.removeFromList(entry)
			delete(tc.entries, key)
		}
	}
}

// evictIfNeededLocked evicts least-recently-accessed entries while the
// table exceeds capacity.
func (tc *TemplateCache) evictIfNeededLocked() {
	for len(tc.entries) > tc.maxEntries && tc.tail.prev != tc.head {
		lru := tc.tail.prev
		tc.removeFromList(lru)
		delete(tc.entries, lru.Key)
		atomic.AddInt64(&tc.evictions, 1)
	}
}

// Clear drops every entry and resets the statistics.
func (tc *TemplateCache) Clear() {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	tc.entries = make(map[string]*Entry)
	tc.head.next = tc.tail
	tc.tail.prev = tc.head

	atomic.StoreInt64(&tc.hits, 0)
	atomic.StoreInt64(&tc.misses, 0)
	atomic.StoreInt64(&tc.evictions, 0)
	atomic.StoreInt64(&tc.compileCount, 0)
	atomic.StoreInt64(&tc.totalCompileNanos, 0)
}

// GetStats returns the aggregate metrics snapshot.
func (tc *TemplateCache) GetStats() Stats {
	tc.mutex.Lock()
	size := len(tc.entries)
	tc.mutex.Unlock()

	hits := atomic.LoadInt64(&tc.hits)
	misses := atomic.LoadInt64(&tc.misses)

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	var avgMs float64
	if compiles := atomic.LoadInt64(&tc.compileCount); compiles > 0 {
		avgMs = float64(atomic.LoadInt64(&tc.totalCompileNanos)) / float64(compiles) / 1e6
	}

	return Stats{
		Hits:             hits,
		Misses:           misses,
		HitRate:          hitRate,
		AvgCompilationMs: avgMs,
		CacheSize:        size,
		MaxCacheSize:     tc.maxEntries,
	}
}

// GetEvictions returns the number of LRU evictions since the last Clear.
func (tc *TemplateCache) GetEvictions() int64 {
	return atomic.LoadInt64(&tc.evictions)
}

// LRU doubly-linked list operations

func (tc *TemplateCache) addToFront(entry *Entry) {
	entry.prev = tc.head
	entry.next = tc.head.next
	tc.head.next.prev = entry
	tc.head.next = entry
}

func (tc *TemplateCache) removeFromList(entry *Entry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
}

func (tc *TemplateCache) moveToFront(entry *Entry) {
	tc.removeFromList(entry)
	tc.addToFront(entry)
}
