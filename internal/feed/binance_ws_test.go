package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

func TestParseDepthMessagePartialStream(t *testing.T) {
	payload := []byte(`{
		"lastUpdateId": 160,
		"bids": [["100.00", "2.0"], ["99.50", "1.0"]],
		"asks": [["101.00", "1.0"], ["102.00", "3.0"]]
	}`)

	snap, err := ParseDepthMessage("BTCUSDT", payload)
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", snap.Symbol)
	require.Len(t, snap.Bids, 2)
	require.Len(t, snap.Asks, 2)
	assert.Equal(t, 100.0, snap.BestBid)
	assert.Equal(t, 101.0, snap.BestAsk)
	assert.InDelta(t, 100.5, snap.MidPrice, 1e-9)
	assert.InDelta(t, 1.0, snap.Spread, 1e-9)
	assert.False(t, snap.Timestamp.IsZero())
}

func TestParseDepthMessageDiffStreamShape(t *testing.T) {
	payload := []byte(`{
		"E": 1700000000000,
		"b": [["100.00", "2.0"]],
		"a": [["101.00", "1.0"], ["102.00", "0.0"]]
	}`)

	snap, err := ParseDepthMessage("ETHUSDT", payload)
	require.NoError(t, err)

	require.Len(t, snap.Bids, 1)
	// Zero-quantity levels are removals and must be dropped.
	require.Len(t, snap.Asks, 1)
	assert.Equal(t, int64(1700000000000), snap.Timestamp.UnixMilli())
}

func TestParseDepthMessageErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `tick`},
		{"no levels", `{"lastUpdateId": 1}`},
		{"malformed pair", `{"bids": [["100.00"]], "asks": []}`},
		{"bad price", `{"bids": [["abc", "1.0"]], "asks": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDepthMessage("BTCUSDT", []byte(tt.payload))
			assert.Error(t, err)
		})
	}
}

func TestBookStateSwap(t *testing.T) {
	state := NewBookState()

	_, err := state.Latest()
	assert.ErrorIs(t, err, domain.ErrNoSnapshot)

	first := domain.OrderbookSnapshot{Symbol: "BTCUSDT", BestBid: 100, BestAsk: 101}
	state.Set(first)

	got, err := state.Latest()
	require.NoError(t, err)
	assert.Equal(t, first, got)

	// A new snapshot fully replaces the prior one.
	second := domain.OrderbookSnapshot{Symbol: "BTCUSDT", BestBid: 100.5, BestAsk: 101.5}
	state.Set(second)

	got, err = state.Latest()
	require.NoError(t, err)
	assert.Equal(t, second, got)
}
