// Package engine implements the trade simulation models: order book
// walking, an Almgren-Chriss style market impact estimate, a slippage
// estimator, a maker/taker classifier, and tier-based fee calculation.
// Everything in this package is a pure function of a snapshot, the trade
// parameters, and the configuration; nothing blocks or performs I/O.
package engine

import (
	"fmt"
	"strings"
)

// FeeRate is a maker/taker fee rate pair for one tier. Rates are fractional
// (0.001 == 10 bps).
type FeeRate struct {
	Maker float64
	Taker float64
}

// Config holds every tunable coefficient of the simulation models. The
// defaults are policy choices, not calibrated values; see DefaultConfig for
// each coefficient's expected sign and range.
type Config struct {
	// ImpactExponent is β in the temporary-impact term
	// γ·participation^β·σ·√τ. β=0.5 matches the square-root impact
	// heuristic. Valid range (0, 1].
	ImpactExponent float64

	// PermanentImpact is η, the coefficient on participation rate for the
	// permanent impact component. Must be >= 0.
	PermanentImpact float64

	// TemporaryImpact is γ, the coefficient on participation^β·σ·√τ for the
	// temporary impact component. Must be >= 0.
	TemporaryImpact float64

	// SlippageVolWeight scales the volatility correction added on top of the
	// walked price deviation: weight·(size_usd/depth_usd)·σ. Must be >= 0.
	SlippageVolWeight float64

	// Maker/taker scoring coefficients. The score
	//
	//	bias − sizeW·(size/top_depth) − levelW·extra_levels + spreadW·spread_ratio
	//
	// is mapped through a logistic onto [0,1]. Larger orders and multi-level
	// fills push toward taker (probability → 0); wider spreads relative to
	// volatility push toward maker.
	MakerBias         float64
	MakerSizeWeight   float64 // must be >= 0: size up ⇒ maker probability down
	MakerLevelWeight  float64 // must be >= 0: extra levels ⇒ maker probability down
	MakerSpreadWeight float64 // must be >= 0: spread up ⇒ maker probability up

	// VolatilityFloor keeps the spread-to-volatility ratio finite when the
	// caller passes σ=0. Must be > 0.
	VolatilityFloor float64

	// DepthLevels bounds how many levels of the relevant side count toward
	// visible depth. Must be > 0.
	DepthLevels int

	// TimeHorizon is the default normalized execution horizon τ used when
	// the request does not supply one. Must be > 0.
	TimeHorizon float64

	// FeeTiers maps a tier name to its maker/taker rate pair. Lookup is
	// case-insensitive.
	FeeTiers map[string]FeeRate
}

// DefaultConfig returns the documented default parameterization.
func DefaultConfig() Config {
	return Config{
		ImpactExponent:    0.5,
		PermanentImpact:   0.05,
		TemporaryImpact:   0.1,
		SlippageVolWeight: 0.5,
		MakerBias:         1.0,
		MakerSizeWeight:   4.0,
		MakerLevelWeight:  1.5,
		MakerSpreadWeight: 0.35,
		VolatilityFloor:   0.01,
		DepthLevels:       10,
		TimeHorizon:       1.0,
		FeeTiers: map[string]FeeRate{
			"tier1": {Maker: 0.0008, Taker: 0.0010},
			"tier2": {Maker: 0.0006, Taker: 0.0008},
			"tier3": {Maker: 0.0004, Taker: 0.0006},
		},
	}
}

// Validate checks that every coefficient is inside its valid range.
func (c Config) Validate() error {
	if c.ImpactExponent <= 0 || c.ImpactExponent > 1 {
		return fmt.Errorf("engine: impact exponent must be in (0, 1], got %v", c.ImpactExponent)
	}
	if c.PermanentImpact < 0 {
		return fmt.Errorf("engine: permanent impact coefficient must be >= 0, got %v", c.PermanentImpact)
	}
	if c.TemporaryImpact < 0 {
		return fmt.Errorf("engine: temporary impact coefficient must be >= 0, got %v", c.TemporaryImpact)
	}
	if c.SlippageVolWeight < 0 {
		return fmt.Errorf("engine: slippage volatility weight must be >= 0, got %v", c.SlippageVolWeight)
	}
	if c.MakerSizeWeight < 0 || c.MakerLevelWeight < 0 || c.MakerSpreadWeight < 0 {
		return fmt.Errorf("engine: maker/taker weights must be >= 0")
	}
	if c.VolatilityFloor <= 0 {
		return fmt.Errorf("engine: volatility floor must be > 0, got %v", c.VolatilityFloor)
	}
	if c.DepthLevels <= 0 {
		return fmt.Errorf("engine: depth levels must be > 0, got %d", c.DepthLevels)
	}
	if c.TimeHorizon <= 0 {
		return fmt.Errorf("engine: time horizon must be > 0, got %v", c.TimeHorizon)
	}
	if len(c.FeeTiers) == 0 {
		return fmt.Errorf("engine: at least one fee tier is required")
	}
	for name, rate := range c.FeeTiers {
		if rate.Maker < 0 || rate.Taker < 0 {
			return fmt.Errorf("engine: fee tier %q has negative rates", name)
		}
	}
	return nil
}

// feeRate resolves a tier name case-insensitively.
func (c Config) feeRate(tier string) (FeeRate, bool) {
	rate, ok := c.FeeTiers[strings.ToLower(strings.TrimSpace(tier))]
	return rate, ok
}
