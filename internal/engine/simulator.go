package engine

import (
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

// Simulator composes the walker and the cost models into a single pre-trade
// estimate. It is stateless per call and safe for concurrent use: every
// Simulate invocation is a pure function of the snapshot, the parameters,
// and the configuration captured at construction.
type Simulator struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Simulator after validating the configuration.
func New(cfg Config, logger *slog.Logger) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "engine")),
	}, nil
}

// Config returns the configuration the simulator was built with.
func (s *Simulator) Config() Config { return s.cfg }

// Simulate estimates the cost of executing params against snap.
//
// The walker runs first; its output feeds the impact, slippage, and
// maker/taker models, which have no ordering dependency among themselves.
// An exhausted book side degrades to a partial-fill result with
// PartialFill set, never an error. Empty-book, crossed-book, bad-depth,
// and unknown-fee-tier conditions fail the whole request with the
// corresponding domain sentinel and no partial result.
func (s *Simulator) Simulate(snap domain.OrderbookSnapshot, params domain.TradeParameters) (domain.SimulationResult, error) {
	if err := validateParams(params); err != nil {
		return domain.SimulationResult{}, err
	}
	// Resolve the fee tier up front so a bad tier fails before any model runs.
	if _, ok := s.cfg.feeRate(params.FeeTier); !ok {
		return domain.SimulationResult{}, fmt.Errorf("engine: fee tier %q: %w", params.FeeTier, domain.ErrUnknownFeeTier)
	}

	walk, err := Walk(snap, params.Side, params.SizeUSD)
	if err != nil {
		return domain.SimulationResult{}, err
	}

	sideLevels := snap.Asks
	refPrice := bestPrice(snap.Asks)
	if params.Side == domain.SideSell {
		sideLevels = snap.Bids
		refPrice = bestPrice(snap.Bids)
	}
	depthQty, depthUSD := depth(sideLevels, s.cfg.DepthLevels)

	horizon := params.TimeHorizon
	if horizon <= 0 {
		horizon = s.cfg.TimeHorizon
	}

	impactPct, err := s.cfg.MarketImpact(walk.FilledQuantity, depthQty, params.Volatility, horizon)
	if err != nil {
		return domain.SimulationResult{}, err
	}

	slippagePct, err := s.cfg.Slippage(params.Side, walk, refPrice, depthUSD, params.Volatility, params.SizeUSD)
	if err != nil {
		return domain.SimulationResult{}, err
	}

	spread, mid := spreadMid(snap)
	topDepthUSD := topOfBookUSD(sideLevels)
	makerProb := s.cfg.MakerProbability(params.SizeUSD, topDepthUSD, spread, mid, params.Volatility, walk.LevelsConsumed)

	feeUSD, err := s.cfg.Fee(params.FeeTier, walk.FilledUSD, makerProb)
	if err != nil {
		return domain.SimulationResult{}, err
	}

	slippageCost := slippagePct * walk.FilledUSD
	impactCost := impactPct * walk.FilledUSD

	res := domain.SimulationResult{
		Symbol:           snap.Symbol,
		Side:             params.Side,
		SizeUSD:          params.SizeUSD,
		SlippagePct:      slippagePct,
		MarketImpactPct:  impactPct,
		SlippageCostUSD:  slippageCost,
		ImpactCostUSD:    impactCost,
		FeeUSD:           feeUSD,
		TotalCostUSD:     slippageCost + impactCost + feeUSD,
		MakerProbability: makerProb,
		TakerProbability: 1 - makerProb,
		PartialFill:      walk.UnfilledUSD > 0,
		Walk:             walk,
		SnapshotTime:     snap.Timestamp,
	}

	if res.PartialFill {
		s.logger.Debug("insufficient liquidity, partial fill",
			slog.String("symbol", snap.Symbol),
			slog.String("side", string(params.Side)),
			slog.Float64("size_usd", params.SizeUSD),
			slog.Float64("unfilled_usd", walk.UnfilledUSD),
		)
	}
	return res, nil
}

func validateParams(p domain.TradeParameters) error {
	if !p.Side.Valid() {
		return fmt.Errorf("engine: side %q: %w", p.Side, domain.ErrInvalidParams)
	}
	if p.SizeUSD <= 0 {
		return fmt.Errorf("engine: size_usd %v must be > 0: %w", p.SizeUSD, domain.ErrInvalidParams)
	}
	if p.Volatility < 0 || p.Volatility > 1 {
		return fmt.Errorf("engine: volatility %v must be in [0, 1]: %w", p.Volatility, domain.ErrInvalidParams)
	}
	if p.TimeHorizon < 0 {
		return fmt.Errorf("engine: time_horizon %v must be >= 0: %w", p.TimeHorizon, domain.ErrInvalidParams)
	}
	return nil
}

func bestPrice(levels []domain.PriceLevel) float64 {
	if len(levels) == 0 {
		return 0
	}
	return levels[0].Price
}

// spreadMid derives the bid-ask spread and mid from the level data. Either
// value is 0 when a side is missing; the maker/taker model then simply
// drops its spread term.
func spreadMid(snap domain.OrderbookSnapshot) (spread, mid float64) {
	if len(snap.Bids) == 0 || len(snap.Asks) == 0 {
		return 0, 0
	}
	bid, ask := snap.Bids[0].Price, snap.Asks[0].Price
	return ask - bid, (ask + bid) / 2
}

func topOfBookUSD(levels []domain.PriceLevel) float64 {
	if len(levels) == 0 {
		return 0
	}
	return levels[0].Price * levels[0].Size
}
