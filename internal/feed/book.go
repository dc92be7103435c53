package feed

import (
	"sync/atomic"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

// BookState holds the most recent orderbook snapshot behind an atomic
// pointer. Replacement is a single pointer swap: an in-flight simulation
// keeps the snapshot value it already read, so it never observes a
// half-updated book. Snapshots must not be mutated after Set.
type BookState struct {
	current atomic.Pointer[domain.OrderbookSnapshot]
}

// NewBookState creates an empty holder.
func NewBookState() *BookState {
	return &BookState{}
}

// Set replaces the current snapshot.
func (b *BookState) Set(snap domain.OrderbookSnapshot) {
	b.current.Store(&snap)
}

// Latest returns the current snapshot, or domain.ErrNoSnapshot before the
// feed has delivered the first book.
func (b *BookState) Latest() (domain.OrderbookSnapshot, error) {
	p := b.current.Load()
	if p == nil {
		return domain.OrderbookSnapshot{}, domain.ErrNoSnapshot
	}
	return *p, nil
}
