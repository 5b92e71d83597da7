// Package history keeps the outcome of past probe runs so a run can be
// compared against the previous one for the same case.
package history

import "github.com/haukened/rr-dnsprobe/internal/dns/domain"

// BloomFilter is the minimal interface the repository needs from Bloom filters.
type BloomFilter interface {
	Add(key []byte)
	MightContain(key []byte) bool
}

// BloomFactory builds filters sized for a capacity and target false-positive rate.
type BloomFactory interface {
	New(capacity uint64, fpRate float64) BloomFilter
}

// RecordCache caches the latest record per case name with basic metrics.
type RecordCache interface {
	Get(name string) (domain.RunRecord, bool)
	Put(name string, rec domain.RunRecord)
	Len() int
	Purge()
	Stats() (hits, misses, evictions uint64)
}

// StoreStats captures high-level counts for the persistent store.
type StoreStats struct {
	Cases uint64 // distinct case names with at least one run
	Runs  uint64 // total runs recorded
}

// Store is the persistent run log.
//   - Append writes a record to the log and makes it the latest for its case
//   - Latest returns the most recent record for a case
//   - Runs returns every record for a case, oldest first
//   - Names lists every case with a record
type Store interface {
	Append(rec domain.RunRecord) error
	Latest(name string) (domain.RunRecord, bool, error)
	Runs(name string) ([]domain.RunRecord, error)
	Names() ([]string, error)
	Stats() StoreStats
	Close() error
}

// RepoStats exposes repository-level counters and underlying store stats.
type RepoStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Store     StoreStats
}

// Repository is the composition layer that wires bloom → cache → store.
// Last returns the previous record for a case; Record persists a new one.
// Runs returns the full log for a case, oldest first.
type Repository interface {
	Last(name string) (domain.RunRecord, bool, error)
	Runs(name string) ([]domain.RunRecord, error)
	Record(rec domain.RunRecord) error
	RepoStats() RepoStats
	Close() error
}
