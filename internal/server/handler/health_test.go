package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

type fakeBookReader struct {
	snap domain.OrderbookSnapshot
	err  error
}

func (f *fakeBookReader) Latest(ctx context.Context, symbol string) (domain.OrderbookSnapshot, error) {
	if f.err != nil {
		return domain.OrderbookSnapshot{}, f.err
	}
	return f.snap, nil
}

type fakeCounter struct {
	count int64
	err   error
}

func (f *fakeCounter) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return f.count, f.err
}

func healthRequest(t *testing.T, h *HealthHandler) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, req)
	return rec
}

func TestHealthOKWithFreshBook(t *testing.T) {
	books := &fakeBookReader{snap: domain.OrderbookSnapshot{
		Symbol:    "BTCUSDT",
		Timestamp: time.Now().UTC(),
	}}
	h := NewHealthHandler(books, &fakeCounter{count: 42}, "BTCUSDT", discardLogger())

	rec := healthRequest(t, h)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"status":"ok"`)
	assert.Contains(t, body, `"symbol":"BTCUSDT"`)
	assert.Contains(t, body, `"snapshot_age_ms"`)
	assert.Contains(t, body, `"simulations_24h":42`)
}

func TestHealthDegradedWithoutSnapshot(t *testing.T) {
	books := &fakeBookReader{err: domain.ErrNoSnapshot}
	h := NewHealthHandler(books, nil, "BTCUSDT", discardLogger())

	rec := healthRequest(t, h)

	// Still 200: the process is alive, the market data is not.
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
	assert.NotContains(t, rec.Body.String(), "snapshot_age_ms")
}

func TestHealthDegradedWhenBookIsStale(t *testing.T) {
	books := &fakeBookReader{snap: domain.OrderbookSnapshot{
		Symbol:    "BTCUSDT",
		Timestamp: time.Now().UTC().Add(-2 * time.Minute),
	}}
	h := NewHealthHandler(books, nil, "BTCUSDT", discardLogger())

	rec := healthRequest(t, h)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
}

func TestHealthOmitsCountWithoutStore(t *testing.T) {
	books := &fakeBookReader{snap: domain.OrderbookSnapshot{
		Symbol:    "BTCUSDT",
		Timestamp: time.Now().UTC(),
	}}
	h := NewHealthHandler(books, nil, "BTCUSDT", discardLogger())

	rec := healthRequest(t, h)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "simulations_24h")
}
