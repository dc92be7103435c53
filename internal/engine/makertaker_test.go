package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakerProbabilityBounds(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name    string
		sizeUSD float64
		levels  int
	}{
		{"tiny order", 1, 1},
		{"top-of-book order", 100, 1},
		{"multi-level order", 5000, 4},
		{"huge order", 1e9, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := cfg.MakerProbability(tt.sizeUSD, 101.0, 1.0, 100.5, 0.2, tt.levels)
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
		})
	}
}

func TestMakerProbabilityDecreasesWithSize(t *testing.T) {
	cfg := DefaultConfig()
	prev := 1.0
	for _, size := range []float64{10, 50, 100, 500, 1000} {
		p := cfg.MakerProbability(size, 101.0, 1.0, 100.5, 0.2, 1)
		assert.Less(t, p, prev)
		prev = p
	}
}

func TestMakerProbabilityIncreasesWithSpread(t *testing.T) {
	cfg := DefaultConfig()
	prev := 0.0
	for _, spread := range []float64{0.1, 0.5, 1.0, 2.0} {
		p := cfg.MakerProbability(50, 101.0, spread, 100.5, 0.2, 1)
		assert.Greater(t, p, prev)
		prev = p
	}
}

func TestMakerProbabilityPenalizesExtraLevels(t *testing.T) {
	cfg := DefaultConfig()
	single := cfg.MakerProbability(50, 101.0, 1.0, 100.5, 0.2, 1)
	multi := cfg.MakerProbability(50, 101.0, 1.0, 100.5, 0.2, 3)
	assert.Greater(t, single, multi)
}

func TestMakerProbabilityNoTopDepthMeansTaker(t *testing.T) {
	cfg := DefaultConfig()
	assert.Zero(t, cfg.MakerProbability(50, 0, 1.0, 100.5, 0.2, 1))
}
