package engine

import (
	"fmt"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

// Fee computes the expected fee for the filled notional, blending the
// tier's maker and taker rates by the maker probability:
//
//	fee = filled_usd · (p_maker·maker_rate + (1−p_maker)·taker_rate)
//
// It fails with domain.ErrUnknownFeeTier for an unrecognized tier name.
func (c Config) Fee(tier string, filledUSD, makerProb float64) (float64, error) {
	rate, ok := c.feeRate(tier)
	if !ok {
		return 0, fmt.Errorf("engine: fee tier %q: %w", tier, domain.ErrUnknownFeeTier)
	}
	return filledUSD * (makerProb*rate.Maker + (1-makerProb)*rate.Taker), nil
}
