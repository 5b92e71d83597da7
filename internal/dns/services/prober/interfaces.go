package prober

import (
	"context"

	"github.com/haukened/rr-dnsprobe/internal/dns/domain"
)

// Exchanger sends one request datagram and returns the response datagram.
type Exchanger interface {
	Exchange(ctx context.Context, packet []byte) ([]byte, error)
}

// History stores run outcomes so a failure can be flagged as a regression.
type History interface {
	Last(name string) (domain.RunRecord, bool, error)
	Runs(name string) ([]domain.RunRecord, error)
	Record(rec domain.RunRecord) error
}
