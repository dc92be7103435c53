package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

func TestFeeBlendsMakerAndTakerRates(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name      string
		tier      string
		filledUSD float64
		makerProb float64
		want      float64
	}{
		{"pure taker tier1", "tier1", 1000, 0, 1.0},
		{"pure maker tier1", "tier1", 1000, 1, 0.8},
		{"even split tier1", "tier1", 1000, 0.5, 0.9},
		{"tier lookup is case-insensitive", "Tier2", 1000, 0, 0.8},
		{"zero notional", "tier3", 0, 0.5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, err := cfg.Fee(tt.tier, tt.filledUSD, tt.makerProb)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, fee, 1e-12)
		})
	}
}

func TestFeeUnknownTier(t *testing.T) {
	cfg := DefaultConfig()
	_, err := cfg.Fee("vip9", 1000, 0.5)
	assert.ErrorIs(t, err, domain.ErrUnknownFeeTier)
}
