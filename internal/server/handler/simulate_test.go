package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

type fakeSimulator struct {
	result domain.SimulationResult
	err    error
	got    domain.TradeParameters
}

func (f *fakeSimulator) Simulate(ctx context.Context, params domain.TradeParameters) (domain.SimulationResult, error) {
	f.got = params
	if f.err != nil {
		return domain.SimulationResult{}, f.err
	}
	return f.result, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSimulateReturnsResult(t *testing.T) {
	fake := &fakeSimulator{
		result: domain.SimulationResult{
			ID:               "a2b56a39-14d9-4b9f-a2cd-84f33ad02bd1",
			Symbol:           "BTCUSDT",
			Side:             domain.SideBuy,
			SizeUSD:          10000,
			TotalCostUSD:     14.2,
			MakerProbability: 0.4,
			TakerProbability: 0.6,
		},
	}
	h := NewSimulateHandler(fake, discardLogger())

	body := `{"symbol":"BTCUSDT","side":"buy","size_usd":10000,"volatility":0.02,"fee_tier":"tier1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Simulate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_cost_usd":14.2`)
	assert.Equal(t, "BTCUSDT", fake.got.Symbol)
	assert.Equal(t, domain.SideBuy, fake.got.Side)
	assert.Equal(t, "tier1", fake.got.FeeTier)
}

func TestSimulateRejectsMalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `buy 10k`},
		{"unknown field", `{"symbol":"BTCUSDT","side":"buy","size_usd":1,"volatility":0,"fee_tier":"tier1","bogus":true}`},
		{"trailing garbage", `{"symbol":"BTCUSDT"}{"again":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSimulateHandler(&fakeSimulator{}, discardLogger())
			req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.Simulate(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSimulateErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid params", domain.ErrInvalidParams, http.StatusBadRequest},
		{"unknown fee tier", domain.ErrUnknownFeeTier, http.StatusBadRequest},
		{"empty book", domain.ErrEmptyBook, http.StatusUnprocessableEntity},
		{"crossed book", domain.ErrCrossedBook, http.StatusUnprocessableEntity},
		{"invalid depth", domain.ErrInvalidDepth, http.StatusUnprocessableEntity},
		{"no snapshot", domain.ErrNoSnapshot, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSimulateHandler(&fakeSimulator{err: tt.err}, discardLogger())

			body := `{"symbol":"BTCUSDT","side":"buy","size_usd":10000,"volatility":0.02,"fee_tier":"tier1"}`
			req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(body))
			rec := httptest.NewRecorder()

			h.Simulate(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		})
	}
}
