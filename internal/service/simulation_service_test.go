package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/tradesim/internal/domain"
	"github.com/alanyoungcy/tradesim/internal/engine"
	"github.com/alanyoungcy/tradesim/internal/feed"
)

type memStore struct {
	mu   sync.Mutex
	recs []domain.SimulationRecord
}

func (m *memStore) Insert(ctx context.Context, rec domain.SimulationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (domain.SimulationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.recs {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.SimulationRecord{}, domain.ErrNotFound
}

func (m *memStore) List(ctx context.Context, symbol string, opts domain.ListOpts) ([]domain.SimulationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SimulationRecord, len(m.recs))
	copy(out, m.recs)
	return out, nil
}

func (m *memStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (m *memStore) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return int64(len(m.recs)), nil
}

type memBus struct {
	mu        sync.Mutex
	published map[string][][]byte
	streamed  map[string][][]byte
}

func newMemBus() *memBus {
	return &memBus{
		published: make(map[string][][]byte),
		streamed:  make(map[string][][]byte),
	}
}

func (m *memBus) Publish(ctx context.Context, channel string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published[channel] = append(m.published[channel], payload)
	return nil
}

func (m *memBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

func (m *memBus) StreamAppend(ctx context.Context, stream string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streamed[stream] = append(m.streamed[stream], payload)
	return nil
}

func testSnapshot() domain.OrderbookSnapshot {
	return domain.OrderbookSnapshot{
		Symbol:    "BTCUSDT",
		Bids:      []domain.PriceLevel{{Price: 100, Size: 2}},
		Asks:      []domain.PriceLevel{{Price: 101, Size: 1}, {Price: 102, Size: 3}},
		BestBid:   100,
		BestAsk:   101,
		MidPrice:  100.5,
		Spread:    1,
		Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newTestService(t *testing.T, store domain.SimulationStore) (*SimulationService, *feed.BookState) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sim, err := engine.New(engine.DefaultConfig(), logger)
	require.NoError(t, err)

	state := feed.NewBookState()
	books := NewBookService(state, nil, nil, logger)
	return NewSimulationService(sim, books, store, nil, logger), state
}

func testParams() domain.TradeParameters {
	return domain.TradeParameters{
		Symbol:     "BTCUSDT",
		Side:       domain.SideBuy,
		SizeUSD:    101,
		Volatility: 0.02,
		FeeTier:    "tier1",
	}
}

func TestSimulateStampsAndPersists(t *testing.T) {
	store := &memStore{}
	svc, state := newTestService(t, store)
	state.Set(testSnapshot())

	res, err := svc.Simulate(context.Background(), testParams())
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.False(t, res.ComputedAt.IsZero())
	assert.Equal(t, "BTCUSDT", res.Symbol)

	// Persisted record mirrors the result.
	require.Len(t, store.recs, 1)
	rec := store.recs[0]
	assert.Equal(t, res.ID, rec.ID)
	assert.Equal(t, res.TotalCostUSD, rec.TotalCostUSD)
	assert.Equal(t, res.Walk.FilledQuantity, rec.FilledQuantity)
	assert.Equal(t, "tier1", rec.FeeTier)

	got, err := svc.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestSimulatePublishesAndStreamsResult(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sim, err := engine.New(engine.DefaultConfig(), logger)
	require.NoError(t, err)

	state := feed.NewBookState()
	state.Set(testSnapshot())
	bus := newMemBus()
	books := NewBookService(state, nil, bus, logger)
	svc := NewSimulationService(sim, books, nil, bus, logger)

	res, err := svc.Simulate(context.Background(), testParams())
	require.NoError(t, err)

	// Ephemeral fan-out plus one entry in the bounded result stream.
	require.Len(t, bus.published["sim:result"], 1)
	require.Len(t, bus.streamed[resultStream], 1)
	assert.Contains(t, string(bus.streamed[resultStream][0]), res.ID)
	assert.Equal(t, bus.published["sim:result"][0], bus.streamed[resultStream][0])
}

func TestSimulateWithoutSnapshot(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Simulate(context.Background(), testParams())
	assert.ErrorIs(t, err, domain.ErrNoSnapshot)
}

func TestSimulateWithoutStoreStillSucceeds(t *testing.T) {
	svc, state := newTestService(t, nil)
	state.Set(testSnapshot())

	res, err := svc.Simulate(context.Background(), testParams())
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
}

func TestSimulateEngineErrorPassesThrough(t *testing.T) {
	svc, state := newTestService(t, nil)
	state.Set(testSnapshot())

	params := testParams()
	params.FeeTier = "platinum"

	_, err := svc.Simulate(context.Background(), params)
	assert.ErrorIs(t, err, domain.ErrUnknownFeeTier)
}

func TestGetRejectsNonUUID(t *testing.T) {
	store := &memStore{}
	svc, _ := newTestService(t, store)

	_, err := svc.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryWithoutStore(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.History(context.Background(), "BTCUSDT", domain.ListOpts{Limit: 10})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
