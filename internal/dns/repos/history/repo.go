package history

import (
	"fmt"
	"sync"

	"github.com/haukened/rr-dnsprobe/internal/dns/domain"
)

// minCapacity keeps a fresh database from starting with a one-bit filter.
const minCapacity = 64

// repository implements Repository by composing a Store, a Bloom filter of
// case names, and a RecordCache. Reads go bloom → cache → store.
type repository struct {
	mu       sync.RWMutex
	store    Store
	cache    RecordCache
	bloom    BloomFilter
	factory  BloomFactory
	fpRate   float64
	capacity uint64
	names    uint64
}

// NewRepository constructs a Repository and seeds the Bloom filter from the
// case names already in the store.
func NewRepository(store Store, cache RecordCache, factory BloomFactory, fpRate float64) (Repository, error) {
	r := &repository{store: store, cache: cache, factory: factory, fpRate: fpRate}
	if err := r.rebuildBloom(minCapacity); err != nil {
		return nil, err
	}
	return r, nil
}

// Last returns the most recent record for the named case.
func (r *repository) Last(name string) (domain.RunRecord, bool, error) {
	// 1) checkBloom: a definite negative means the case never ran
	if !r.checkBloom(name) {
		return domain.RunRecord{}, false, nil
	}
	// 2) checkCache
	if rec, ok := r.checkCache(name); ok {
		return rec, true, nil
	}
	// 3) checkStore
	rec, ok, err := r.store.Latest(name)
	if err != nil {
		return domain.RunRecord{}, false, fmt.Errorf("history lookup %s: %w", name, err)
	}
	if !ok {
		return domain.RunRecord{}, false, nil
	}
	// 4) updateCache
	r.updateCache(name, rec)
	return rec, true, nil
}

// Record appends rec to the store, then refreshes the cache and the filter.
func (r *repository) Record(rec domain.RunRecord) error {
	if rec.Case == "" {
		return fmt.Errorf("history record without a case name")
	}
	known := r.checkBloom(rec.Case)
	if err := r.store.Append(rec); err != nil {
		return fmt.Errorf("history append %s: %w", rec.Case, err)
	}

	r.mu.Lock()
	r.cache.Put(rec.Case, rec)
	r.bloom.Add([]byte(rec.Case))
	if !known {
		r.names++
	}
	grow := r.names > r.capacity
	capacity := r.capacity
	r.mu.Unlock()

	if grow {
		return r.rebuildBloom(capacity * 2)
	}
	return nil
}

// Runs returns every recorded run of the named case, oldest first.
func (r *repository) Runs(name string) ([]domain.RunRecord, error) {
	if !r.checkBloom(name) {
		return nil, nil
	}
	runs, err := r.store.Runs(name)
	if err != nil {
		return nil, fmt.Errorf("history runs %s: %w", name, err)
	}
	return runs, nil
}

// RepoStats returns cache counters and a store snapshot.
func (r *repository) RepoStats() RepoStats {
	hits, misses, evictions := r.cache.Stats()
	return RepoStats{Hits: hits, Misses: misses, Evictions: evictions, Store: r.store.Stats()}
}

// Close releases the store.
func (r *repository) Close() error {
	r.mu.Lock()
	r.cache.Purge()
	r.mu.Unlock()
	return r.store.Close()
}

// rebuildBloom builds a fresh filter for every name in the store, sized for
// at least capacity names, and swaps it in.
func (r *repository) rebuildBloom(capacity uint64) error {
	names, err := r.store.Names()
	if err != nil {
		return fmt.Errorf("history names: %w", err)
	}
	n := uint64(len(names))
	if capacity < minCapacity {
		capacity = minCapacity
	}
	for capacity < n {
		capacity *= 2
	}
	bf := r.factory.New(capacity, r.fpRate)
	for _, name := range names {
		bf.Add([]byte(name))
	}

	r.mu.Lock()
	r.bloom = bf
	r.capacity = capacity
	r.names = n
	r.mu.Unlock()
	return nil
}

// checkBloom returns true if the store may hold the name.
func (r *repository) checkBloom(name string) bool {
	r.mu.RLock()
	bf := r.bloom
	r.mu.RUnlock()
	if bf == nil {
		return true
	}
	return bf.MightContain([]byte(name))
}

func (r *repository) checkCache(name string) (domain.RunRecord, bool) {
	r.mu.RLock()
	rec, ok := r.cache.Get(name)
	r.mu.RUnlock()
	return rec, ok
}

func (r *repository) updateCache(name string, rec domain.RunRecord) {
	r.mu.Lock()
	r.cache.Put(name, rec)
	r.mu.Unlock()
}
