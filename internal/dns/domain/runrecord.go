package domain

import "time"

// RunRecord is the persisted outcome of one case run.
type RunRecord struct {
	Case   string
	At     time.Time
	Passed bool
	Kind   FailureKind
	RTT    time.Duration
}

// Regressed reports whether cur fails where prev passed.
func Regressed(prev, cur RunRecord) bool {
	return prev.Passed && !cur.Passed
}
