package engine

import (
	"fmt"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

// Slippage quantifies the fractional deviation between the best quote
// prevailing before the walk and the walked average execution price, plus a
// volatility-scaled correction for mis-estimation risk beyond the observed
// walk:
//
//	base       = (avg − ref) / ref   signed by side
//	correction = weight · (size_usd / depth_usd) · σ
//
// The reference price is the best bid/ask on the relevant side, not the
// mid: the walk itself already captures book-consumption effects. For a
// buy, positive means paid more than the quote; for a sell, positive means
// received less. The result is clamped at zero — true cost is never
// modeled as negative — and the correction vanishes as size → 0.
//
// It fails with domain.ErrInvalidDepth when depthUSD <= 0.
func (c Config) Slippage(side domain.Side, walk domain.WalkResult, refPrice, depthUSD, volatility, sizeUSD float64) (float64, error) {
	if depthUSD <= 0 {
		return 0, fmt.Errorf("engine: slippage: depth %v: %w", depthUSD, domain.ErrInvalidDepth)
	}
	if refPrice <= 0 {
		return 0, fmt.Errorf("engine: slippage: reference price %v: %w", refPrice, domain.ErrInvalidDepth)
	}

	var base float64
	if walk.FilledQuantity > 0 {
		switch side {
		case domain.SideSell:
			base = (refPrice - walk.AveragePrice) / refPrice
		default:
			base = (walk.AveragePrice - refPrice) / refPrice
		}
	}

	correction := c.SlippageVolWeight * (sizeUSD / depthUSD) * volatility

	total := base + correction
	if total < 0 {
		total = 0
	}
	return total, nil
}
