// Package service binds the simulation engine to the rest of the
// application: the live book state, the Redis mirror, persistence, and the
// signal bus.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alanyoungcy/tradesim/internal/domain"
	"github.com/alanyoungcy/tradesim/internal/feed"
)

// bookEvent is the JSON shape published on the "book:update" channel.
type bookEvent struct {
	Event     string    `json:"event"`
	Symbol    string    `json:"symbol"`
	BestBid   float64   `json:"best_bid"`
	BestAsk   float64   `json:"best_ask"`
	MidPrice  float64   `json:"mid_price"`
	Spread    float64   `json:"spread"`
	BidLevels int       `json:"bid_levels"`
	AskLevels int       `json:"ask_levels"`
	Timestamp time.Time `json:"timestamp"`
}

// BookService fans each feed snapshot out to the in-memory state, the Redis
// mirror, and the signal bus. The in-memory swap always happens first so a
// simulation never waits on Redis.
type BookService struct {
	state  *feed.BookState
	cache  domain.OrderbookCache
	bus    domain.SignalBus
	logger *slog.Logger
}

// NewBookService creates a BookService. cache and bus may be nil when Redis
// is disabled.
func NewBookService(state *feed.BookState, cache domain.OrderbookCache, bus domain.SignalBus, logger *slog.Logger) *BookService {
	return &BookService{
		state:  state,
		cache:  cache,
		bus:    bus,
		logger: logger.With(slog.String("component", "book_service")),
	}
}

// HandleSnapshot is the feed callback for each new orderbook snapshot.
func (s *BookService) HandleSnapshot(ctx context.Context, snap domain.OrderbookSnapshot) {
	s.state.Set(snap)

	if s.cache != nil {
		if err := s.cache.SetSnapshot(ctx, snap.Symbol, snap); err != nil {
			s.logger.Warn("failed to mirror snapshot to cache",
				slog.String("symbol", snap.Symbol),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.bus != nil {
		ev := bookEvent{
			Event:     "book_update",
			Symbol:    snap.Symbol,
			BestBid:   snap.BestBid,
			BestAsk:   snap.BestAsk,
			MidPrice:  snap.MidPrice,
			Spread:    snap.Spread,
			BidLevels: len(snap.Bids),
			AskLevels: len(snap.Asks),
			Timestamp: snap.Timestamp,
		}
		payload, err := json.Marshal(ev)
		if err == nil {
			if err := s.bus.Publish(ctx, "book:update", payload); err != nil {
				s.logger.Debug("failed to publish book event",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// Latest returns the current snapshot for a symbol, preferring the
// in-memory state and falling back to the Redis mirror (useful right after
// a restart, before the feed reconnects). The in-memory book only counts
// when its symbol matches the request: the feed runs one symbol, and a
// request for a different one must not be priced against it.
func (s *BookService) Latest(ctx context.Context, symbol string) (domain.OrderbookSnapshot, error) {
	snap, err := s.state.Latest()
	if err == nil {
		if strings.EqualFold(snap.Symbol, symbol) {
			return snap, nil
		}
		err = fmt.Errorf("service: no snapshot for %s: %w", symbol, domain.ErrNoSnapshot)
	}
	if s.cache == nil {
		return domain.OrderbookSnapshot{}, err
	}
	snap, cacheErr := s.cache.GetSnapshot(ctx, symbol)
	if cacheErr != nil {
		return domain.OrderbookSnapshot{}, err
	}
	return snap, nil
}
