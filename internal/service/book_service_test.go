package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/tradesim/internal/domain"
	"github.com/alanyoungcy/tradesim/internal/feed"
)

type memCache struct {
	mu    sync.Mutex
	snaps map[string]domain.OrderbookSnapshot
}

func newMemCache() *memCache {
	return &memCache{snaps: make(map[string]domain.OrderbookSnapshot)}
}

func (m *memCache) SetSnapshot(ctx context.Context, symbol string, snap domain.OrderbookSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[strings.ToUpper(symbol)] = snap
	return nil
}

func (m *memCache) GetSnapshot(ctx context.Context, symbol string) (domain.OrderbookSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[strings.ToUpper(symbol)]
	if !ok {
		return domain.OrderbookSnapshot{}, domain.ErrNotFound
	}
	return snap, nil
}

func symbolSnapshot(symbol string) domain.OrderbookSnapshot {
	return domain.OrderbookSnapshot{
		Symbol:    symbol,
		Bids:      []domain.PriceLevel{{Price: 100, Size: 2}},
		Asks:      []domain.PriceLevel{{Price: 101, Size: 1}},
		BestBid:   100,
		BestAsk:   101,
		MidPrice:  100.5,
		Spread:    1,
		Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newBookService(cache domain.OrderbookCache) (*BookService, *feed.BookState) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	state := feed.NewBookState()
	return NewBookService(state, cache, nil, logger), state
}

func TestLatestReturnsMatchingSymbol(t *testing.T) {
	svc, state := newBookService(nil)
	state.Set(symbolSnapshot("BTCUSDT"))

	snap, err := svc.Latest(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", snap.Symbol)
}

func TestLatestSymbolLookupIsCaseInsensitive(t *testing.T) {
	svc, state := newBookService(nil)
	state.Set(symbolSnapshot("BTCUSDT"))

	snap, err := svc.Latest(context.Background(), "btcusdt")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", snap.Symbol)
}

func TestLatestRejectsMismatchedSymbol(t *testing.T) {
	svc, state := newBookService(nil)
	state.Set(symbolSnapshot("BTCUSDT"))

	// The feed's book must never price a request for a different symbol.
	_, err := svc.Latest(context.Background(), "ETHUSDT")
	assert.ErrorIs(t, err, domain.ErrNoSnapshot)
}

func TestLatestMismatchFallsBackToCache(t *testing.T) {
	cache := newMemCache()
	require.NoError(t, cache.SetSnapshot(context.Background(), "ETHUSDT", symbolSnapshot("ETHUSDT")))

	svc, state := newBookService(cache)
	state.Set(symbolSnapshot("BTCUSDT"))

	snap, err := svc.Latest(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", snap.Symbol)
}

func TestLatestEmptyStateFallsBackToCache(t *testing.T) {
	cache := newMemCache()
	require.NoError(t, cache.SetSnapshot(context.Background(), "BTCUSDT", symbolSnapshot("BTCUSDT")))

	svc, _ := newBookService(cache)

	snap, err := svc.Latest(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", snap.Symbol)
}

func TestLatestEmptyStateAndCacheMiss(t *testing.T) {
	svc, _ := newBookService(newMemCache())

	_, err := svc.Latest(context.Background(), "BTCUSDT")
	assert.ErrorIs(t, err, domain.ErrNoSnapshot)
}

func TestHandleSnapshotMirrorsToCache(t *testing.T) {
	cache := newMemCache()
	svc, state := newBookService(cache)

	svc.HandleSnapshot(context.Background(), symbolSnapshot("BTCUSDT"))

	snap, err := state.Latest()
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", snap.Symbol)

	cached, err := cache.GetSnapshot(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, snap, cached)
}
