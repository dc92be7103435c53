package domain

import (
	"context"
	"time"
)

// ListOpts carries pagination and time-range filters for list queries.
// Since is inclusive; Until is exclusive, so List(Until: t) and
// DeleteBefore(t) select the same rows.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// SimulationStore persists completed simulation records.
type SimulationStore interface {
	Insert(ctx context.Context, rec SimulationRecord) error
	GetByID(ctx context.Context, id string) (SimulationRecord, error)
	// List returns records for a symbol, newest first. An empty symbol
	// matches all symbols.
	List(ctx context.Context, symbol string, opts ListOpts) ([]SimulationRecord, error)
	// DeleteBefore removes records created before cutoff and returns the
	// number deleted.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}
