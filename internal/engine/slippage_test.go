package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

func TestSlippageBuyBaseDeviation(t *testing.T) {
	cfg := DefaultConfig()
	walk := domain.WalkResult{FilledQuantity: 4, AveragePrice: 101.75}

	// σ=0 isolates the walked deviation against the best ask.
	slip, err := cfg.Slippage(domain.SideBuy, walk, 101.0, 407.0, 0, 500.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.75/101.0, slip, 1e-12)
}

func TestSlippageSellSignedBySide(t *testing.T) {
	cfg := DefaultConfig()
	walk := domain.WalkResult{FilledQuantity: 3, AveragePrice: 99.5}

	// Selling below the best bid means receiving less: positive slippage.
	slip, err := cfg.Slippage(domain.SideSell, walk, 100.0, 500.0, 0, 300.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5/100.0, slip, 1e-12)
}

func TestSlippageVolatilityCorrection(t *testing.T) {
	cfg := DefaultConfig()
	walk := domain.WalkResult{FilledQuantity: 1, AveragePrice: 101.0}

	flat, err := cfg.Slippage(domain.SideBuy, walk, 101.0, 407.0, 0, 101.0)
	require.NoError(t, err)
	assert.Zero(t, flat)

	// Higher volatility widens the estimate.
	corrected, err := cfg.Slippage(domain.SideBuy, walk, 101.0, 407.0, 0.4, 101.0)
	require.NoError(t, err)
	assert.InDelta(t, cfg.SlippageVolWeight*(101.0/407.0)*0.4, corrected, 1e-12)
	assert.Greater(t, corrected, flat)
}

func TestSlippageCorrectionVanishesAsSizeGoesToZero(t *testing.T) {
	cfg := DefaultConfig()
	walk := domain.WalkResult{FilledQuantity: 0.001, AveragePrice: 101.0}

	slip, err := cfg.Slippage(domain.SideBuy, walk, 101.0, 407.0, 0.9, 1e-9)
	require.NoError(t, err)
	assert.InDelta(t, 0, slip, 1e-10)
}

func TestSlippageClampedNonNegative(t *testing.T) {
	cfg := DefaultConfig()
	// A sell filled above the reference would be a negative cost; it is
	// clamped to zero instead.
	walk := domain.WalkResult{FilledQuantity: 1, AveragePrice: 100.5}
	slip, err := cfg.Slippage(domain.SideSell, walk, 100.0, 500.0, 0, 100.0)
	require.NoError(t, err)
	assert.Zero(t, slip)
}

func TestSlippageInvalidInputs(t *testing.T) {
	cfg := DefaultConfig()
	walk := domain.WalkResult{FilledQuantity: 1, AveragePrice: 101.0}

	_, err := cfg.Slippage(domain.SideBuy, walk, 101.0, 0, 0.1, 100.0)
	assert.ErrorIs(t, err, domain.ErrInvalidDepth)

	_, err = cfg.Slippage(domain.SideBuy, walk, 0, 407.0, 0.1, 100.0)
	assert.ErrorIs(t, err, domain.ErrInvalidDepth)
}
