package engine

import (
	"fmt"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

// fillEpsilon absorbs float drift when deciding whether a notional was
// fully consumed.
const fillEpsilon = 1e-9

// Walk simulates executing a market order of sizeUSD notional against the
// snapshot, consuming levels in price-priority order: ascending asks for a
// buy, descending bids for a sell. At each level it takes
// min(remaining_usd/price, level_size). If the side is exhausted first, the
// partial fill is returned with UnfilledUSD > 0; that is not an error.
//
// Walk fails with domain.ErrCrossedBook when best bid >= best ask and with
// domain.ErrEmptyBook when the relevant side has no levels.
func Walk(snap domain.OrderbookSnapshot, side domain.Side, sizeUSD float64) (domain.WalkResult, error) {
	if len(snap.Bids) > 0 && len(snap.Asks) > 0 && snap.Bids[0].Price >= snap.Asks[0].Price {
		return domain.WalkResult{}, fmt.Errorf("engine: walk %s: bid %v >= ask %v: %w",
			snap.Symbol, snap.Bids[0].Price, snap.Asks[0].Price, domain.ErrCrossedBook)
	}

	levels := snap.Asks
	if side == domain.SideSell {
		levels = snap.Bids
	}
	if len(levels) == 0 {
		return domain.WalkResult{}, fmt.Errorf("engine: walk %s %s: %w", snap.Symbol, side, domain.ErrEmptyBook)
	}

	var (
		remaining = sizeUSD
		filled    float64
		cost      float64
		consumed  int
	)
	for _, lvl := range levels {
		if lvl.Price <= 0 || lvl.Size <= 0 {
			continue
		}
		qty := remaining / lvl.Price
		if qty > lvl.Size {
			qty = lvl.Size
		}
		cost += qty * lvl.Price
		filled += qty
		remaining -= qty * lvl.Price
		consumed++
		if remaining <= fillEpsilon {
			remaining = 0
			break
		}
	}

	res := domain.WalkResult{
		FilledQuantity: filled,
		FilledUSD:      cost,
		UnfilledUSD:    remaining,
		LevelsConsumed: consumed,
	}
	if filled > 0 {
		res.AveragePrice = cost / filled
	}
	return res, nil
}

// depth returns the visible quantity and USD notional on one side of the
// book, bounded to the first maxLevels levels.
func depth(levels []domain.PriceLevel, maxLevels int) (qty, usd float64) {
	for i, lvl := range levels {
		if i >= maxLevels {
			break
		}
		if lvl.Price <= 0 || lvl.Size <= 0 {
			continue
		}
		qty += lvl.Size
		usd += lvl.Price * lvl.Size
	}
	return qty, usd
}
