// Package cache provides the in-process TTL store for match scores.
package cache

import (
	"strings"
	"sync"
	"time"

	"dealflow_backend/internal/algorithms"
)

const DefaultTTL = 24 * time.Hour

// ScoreCache maps an investor/company pair to a computed score.
type ScoreCache interface {
	Get(key string) (algorithms.MatchScore, bool)
	Set(key string, score algorithms.MatchScore)
	Delete(key string)
	DeleteWhere(match func(key string) bool) int
	Clear()
}

// Key builds the cache key for a pair.
func Key(investorID, companyID string) string {
	return investorID + ":" + companyID
}

// InvestorPrefix and CompanySuffix select every entry of one side.
func InvestorPrefix(investorID string) func(string) bool {
	prefix := investorID + ":"
	return func(key string) bool { return strings.HasPrefix(key, prefix) }
}

func CompanySuffix(companyID string) func(string) bool {
	suffix := ":" + companyID
	return func(key string) bool { return strings.HasSuffix(key, suffix) }
}

type entry struct {
	score     algorithms.MatchScore
	expiresAt time.Time
}

// MemoryScoreCache expires entries lazily on read; there is no sweeper.
type MemoryScoreCache struct {
	mu      sync.RWMutex
	now     func() time.Time
	ttl     time.Duration
	entries map[string]entry
}

func NewMemoryScoreCache(ttl time.Duration, now func() time.Time) *MemoryScoreCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryScoreCache{
		now:     now,
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

func (c *MemoryScoreCache) Get(key string) (algorithms.MatchScore, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return algorithms.MatchScore{}, false
	}

	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// another writer may have refreshed it meanwhile
		if cur, ok := c.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return algorithms.MatchScore{}, false
	}
	return e.score, true
}

func (c *MemoryScoreCache) Set(key string, score algorithms.MatchScore) {
	expiresAt := c.now().Add(c.ttl)

	c.mu.Lock()
	c.entries[key] = entry{score: score, expiresAt: expiresAt}
	c.mu.Unlock()
}

func (c *MemoryScoreCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// DeleteWhere removes every key accepted by match and returns how many went.
func (c *MemoryScoreCache) DeleteWhere(match func(key string) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if match(key) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *MemoryScoreCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len counts stored entries, expired ones included.
func (c *MemoryScoreCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
