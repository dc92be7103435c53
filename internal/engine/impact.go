package engine

import (
	"fmt"
	"math"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

// MarketImpact estimates the fractional price displacement caused by
// executing filledQty against a side with the given visible depth, in the
// Almgren-Chriss decomposition:
//
//	permanent  = η · participation
//	temporary  = γ · participation^β · σ · √τ
//
// where participation = filledQty / depth. The result is the sum of both
// components, always >= 0 for participation >= 0, and exactly 0 when
// nothing was filled.
//
// It fails with domain.ErrInvalidDepth when depth <= 0, which indicates a
// malformed book rather than a thin one.
func (c Config) MarketImpact(filledQty, depthQty, volatility, horizon float64) (float64, error) {
	if depthQty <= 0 {
		return 0, fmt.Errorf("engine: impact: depth %v: %w", depthQty, domain.ErrInvalidDepth)
	}
	if filledQty <= 0 {
		return 0, nil
	}
	if horizon <= 0 {
		horizon = c.TimeHorizon
	}

	participation := filledQty / depthQty
	permanent := c.PermanentImpact * participation
	temporary := c.TemporaryImpact * math.Pow(participation, c.ImpactExponent) * volatility * math.Sqrt(horizon)
	return permanent + temporary, nil
}
