package engine

import (
	"container/list"
	"fmt"
)

// IdempotencyChecker implements two-tier deduplication: an in-memory LRU
// for the hot path, and an injected durable checker (Postgres) for keys
// that have aged out of the LRU.
type IdempotencyChecker struct {
	lru       *IdempotencyLRU
	dbChecker DBIdempotencyChecker
}

// DBIdempotencyChecker is the interface for the durable dedup lookup
type DBIdempotencyChecker interface {
	IsDuplicate(opKind string, idempotencyKey string) (bool, error)
}

func NewIdempotencyChecker(capacity int, dbChecker DBIdempotencyChecker) *IdempotencyChecker {
	return &IdempotencyChecker{
		lru:       NewIdempotencyLRU(capacity),
		dbChecker: dbChecker,
	}
}

// IsDuplicate checks if the operation has been processed (two-tier lookup)
func (ic *IdempotencyChecker) IsDuplicate(opKind string, idempotencyKey string) bool {
	compositeKey := fmt.Sprintf("%s:%s", opKind, idempotencyKey)

	if ic.lru.Contains(compositeKey) {
		return true
	}

	if ic.dbChecker != nil {
		isDup, err := ic.dbChecker.IsDuplicate(opKind, idempotencyKey)
		if err != nil {
			// Conservative: a DB failure must not block processing,
			// so assume not duplicate
			return false
		}

		if isDup {
			// Cache so we don't hit the DB again
			ic.lru.Add(compositeKey)
			return true
		}
	}

	return false
}

// MarkProcessed adds key to the LRU after successful processing
func (ic *IdempotencyChecker) MarkProcessed(opKind string, idempotencyKey string) {
	ic.lru.Add(fmt.Sprintf("%s:%s", opKind, idempotencyKey))
}

// WarmLRU preloads composite keys, typically from a snapshot or the tail
// of the operation log.
func (ic *IdempotencyChecker) WarmLRU(keys []string) {
	ic.lru.WarmFromKeys(keys)
}

// Keys returns the cached composite keys, most recent first.
func (ic *IdempotencyChecker) Keys() []string {
	return ic.lru.Keys()
}

// --- LRU Implementation ---

// IdempotencyLRU is an LRU cache for idempotency keys.
// Not thread-safe — only accessed from the single-threaded engine.
type IdempotencyLRU struct {
	capacity int
	cache    map[string]*list.Element
	lruList  *list.List

	evictions int64
}

type lruEntry struct {
	key string
}

func NewIdempotencyLRU(capacity int) *IdempotencyLRU {
	return &IdempotencyLRU{
		capacity: capacity,
		cache:    make(map[string]*list.Element, capacity),
		lruList:  list.New(),
	}
}

// Contains checks if key exists (promotes to front)
func (lru *IdempotencyLRU) Contains(key string) bool {
	elem, exists := lru.cache[key]
	if exists {
		lru.lruList.MoveToFront(elem)
		return true
	}
	return false
}

// Add inserts a key (or promotes if exists)
func (lru *IdempotencyLRU) Add(key string) {
	if elem, exists := lru.cache[key]; exists {
		lru.lruList.MoveToFront(elem)
		return
	}

	entry := &lruEntry{key: key}
	elem := lru.lruList.PushFront(entry)
	lru.cache[key] = elem

	if lru.lruList.Len() > lru.capacity {
		lru.evictOldest()
	}
}

func (lru *IdempotencyLRU) evictOldest() {
	elem := lru.lruList.Back()
	if elem != nil {
		lru.lruList.Remove(elem)
		entry := elem.Value.(*lruEntry)
		delete(lru.cache, entry.key)
		lru.evictions++
	}
}

// WarmFromKeys loads a batch of composite keys into the LRU. On restart,
// recent keys are loaded from Postgres to avoid cold-path DB lookups.
func (lru *IdempotencyLRU) WarmFromKeys(keys []string) {
	for _, key := range keys {
		if _, exists := lru.cache[key]; exists {
			continue
		}
		entry := &lruEntry{key: key}
		elem := lru.lruList.PushFront(entry)
		lru.cache[key] = elem

		if lru.lruList.Len() > lru.capacity {
			lru.evictOldest()
		}
	}
}

// Keys returns all cached composite keys, most recent first.
func (lru *IdempotencyLRU) Keys() []string {
	keys := make([]string, 0, lru.lruList.Len())
	for elem := lru.lruList.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*lruEntry).key)
	}
	return keys
}

// Size returns current number of entries
func (lru *IdempotencyLRU) Size() int {
	return lru.lruList.Len()
}

// Evictions returns total evictions (for metrics)
func (lru *IdempotencyLRU) Evictions() int64 {
	return lru.evictions
}
