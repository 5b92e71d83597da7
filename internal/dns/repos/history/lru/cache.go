// Package lru holds the latest run of recently probed cases in memory so a
// repeated suite does not go back to the database for every case.
package lru

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/rr-dnsprobe/internal/dns/domain"
	"github.com/haukened/rr-dnsprobe/internal/dns/repos/history"
)

// counters are reported through Stats and logged when the history closes.
type counters struct {
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

func (c *counters) snapshot() (hits, misses, evictions uint64) {
	return c.hits.Load(), c.misses.Load(), c.evictions.Load()
}

// latestRuns maps a case name to its most recent RunRecord.
type latestRuns struct {
	entries *lru.Cache[string, domain.RunRecord]
	stats   counters
}

// New returns a cache holding the latest run of up to size cases.
// A size of zero or less turns caching off: every Get misses.
func New(size int) (history.RecordCache, error) {
	if size <= 0 {
		return noCache{}, nil
	}

	c := &latestRuns{}
	// Purge goes through the callback too, so closing counts as evictions.
	entries, err := lru.NewWithEvict(size, func(string, domain.RunRecord) {
		c.stats.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

func (c *latestRuns) Get(name string) (domain.RunRecord, bool) {
	rec, ok := c.entries.Get(name)
	if ok {
		c.stats.hits.Add(1)
	} else {
		c.stats.misses.Add(1)
	}
	return rec, ok
}

// Put replaces whatever was cached for rec's case; older runs live only in the store.
func (c *latestRuns) Put(name string, rec domain.RunRecord) { c.entries.Add(name, rec) }

func (c *latestRuns) Len() int { return c.entries.Len() }

func (c *latestRuns) Purge() { c.entries.Purge() }

func (c *latestRuns) Stats() (hits, misses, evictions uint64) { return c.stats.snapshot() }

// noCache is used when history.cache_size is 0.
type noCache struct{}

func (noCache) Get(string) (domain.RunRecord, bool) { return domain.RunRecord{}, false }
func (noCache) Put(string, domain.RunRecord)        {}
func (noCache) Len() int                            { return 0 }
func (noCache) Purge()                              {}
func (noCache) Stats() (uint64, uint64, uint64)     { return 0, 0, 0 }

var (
	_ history.RecordCache = (*latestRuns)(nil)
	_ history.RecordCache = noCache{}
)
