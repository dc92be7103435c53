package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

func TestMarketImpactZeroFill(t *testing.T) {
	cfg := DefaultConfig()
	impact, err := cfg.MarketImpact(0, 10, 0.5, 1.0)
	require.NoError(t, err)
	assert.Zero(t, impact)
}

func TestMarketImpactInvalidDepth(t *testing.T) {
	cfg := DefaultConfig()
	for _, d := range []float64{0, -1} {
		_, err := cfg.MarketImpact(1, d, 0.5, 1.0)
		assert.ErrorIs(t, err, domain.ErrInvalidDepth)
	}
}

func TestMarketImpactSquareRootHeuristic(t *testing.T) {
	// participation 0.25, β 0.5, η 0.05, γ 0.1, σ 0.5, τ 1:
	// permanent = 0.05·0.25 = 0.0125
	// temporary = 0.1·√0.25·0.5 = 0.025
	cfg := DefaultConfig()
	impact, err := cfg.MarketImpact(1, 4, 0.5, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.0375, impact, 1e-12)
}

func TestMarketImpactMonotoneInSize(t *testing.T) {
	cfg := DefaultConfig()
	prev := 0.0
	for _, qty := range []float64{0.1, 0.5, 1, 2, 4, 8} {
		impact, err := cfg.MarketImpact(qty, 10, 0.3, 1.0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, impact, prev)
		prev = impact
	}
}

func TestMarketImpactDefaultsHorizonWhenUnset(t *testing.T) {
	cfg := DefaultConfig()
	withDefault, err := cfg.MarketImpact(1, 4, 0.5, 0)
	require.NoError(t, err)
	explicit, err := cfg.MarketImpact(1, 4, 0.5, cfg.TimeHorizon)
	require.NoError(t, err)
	assert.Equal(t, explicit, withDefault)
}

func TestMarketImpactNonNegativeWithoutVolatility(t *testing.T) {
	cfg := DefaultConfig()
	impact, err := cfg.MarketImpact(2, 10, 0, 1.0)
	require.NoError(t, err)
	// Only the permanent component remains.
	assert.InDelta(t, cfg.PermanentImpact*0.2, impact, 1e-12)
}
