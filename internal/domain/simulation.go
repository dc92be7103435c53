package domain

import "time"

// Side is the direction of the simulated order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Valid reports whether the side is one of the recognized values.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// TradeParameters describes the order a caller wants to cost out. Volatility
// is an annualized (or normalized) proxy in [0,1]. TimeHorizon is the
// normalized execution horizon; zero means "use the engine default".
type TradeParameters struct {
	Symbol      string  `json:"symbol"`
	Side        Side    `json:"side"`
	SizeUSD     float64 `json:"size_usd"`
	Volatility  float64 `json:"volatility"`
	FeeTier     string  `json:"fee_tier"`
	TimeHorizon float64 `json:"time_horizon,omitempty"`
}

// WalkResult is the outcome of simulating a market order against a snapshot.
// UnfilledUSD is greater than zero only when the book side was exhausted
// before the full notional could be filled.
type WalkResult struct {
	FilledQuantity float64 `json:"filled_quantity"`
	FilledUSD      float64 `json:"filled_usd"`
	AveragePrice   float64 `json:"average_price"`
	UnfilledUSD    float64 `json:"unfilled_usd"`
	LevelsConsumed int     `json:"levels_consumed"`
}

// SimulationResult is the complete pre-trade cost estimate. All *Pct fields
// are fractional price moves (0.01 == 1%). TotalCostUSD always equals
// SlippageCostUSD + ImpactCostUSD + FeeUSD.
type SimulationResult struct {
	ID      string  `json:"id,omitempty"`
	Symbol  string  `json:"symbol"`
	Side    Side    `json:"side"`
	SizeUSD float64 `json:"size_usd"`

	SlippagePct      float64 `json:"slippage_pct"`
	MarketImpactPct  float64 `json:"market_impact_pct"`
	SlippageCostUSD  float64 `json:"slippage_cost_usd"`
	ImpactCostUSD    float64 `json:"impact_cost_usd"`
	FeeUSD           float64 `json:"fee_usd"`
	TotalCostUSD     float64 `json:"total_cost_usd"`
	MakerProbability float64 `json:"maker_probability"`
	TakerProbability float64 `json:"taker_probability"`

	PartialFill bool       `json:"partial_fill"`
	Walk        WalkResult `json:"walk"`

	SnapshotTime time.Time `json:"snapshot_time"`
	ComputedAt   time.Time `json:"computed_at,omitempty"`
	ComputeUS    int64     `json:"compute_us,omitempty"`
}

// SimulationRecord is the persisted, flattened form of a simulation request
// and its result, used for history queries and archival.
type SimulationRecord struct {
	ID              string    `json:"id"`
	Symbol          string    `json:"symbol"`
	Side            Side      `json:"side"`
	SizeUSD         float64   `json:"size_usd"`
	Volatility      float64   `json:"volatility"`
	FeeTier         string    `json:"fee_tier"`
	SlippagePct     float64   `json:"slippage_pct"`
	MarketImpactPct float64   `json:"market_impact_pct"`
	FeeUSD          float64   `json:"fee_usd"`
	TotalCostUSD    float64   `json:"total_cost_usd"`
	MakerProb       float64   `json:"maker_probability"`
	PartialFill     bool      `json:"partial_fill"`
	FilledQuantity  float64   `json:"filled_quantity"`
	AveragePrice    float64   `json:"average_price"`
	UnfilledUSD     float64   `json:"unfilled_usd"`
	LevelsConsumed  int       `json:"levels_consumed"`
	SnapshotTime    time.Time `json:"snapshot_time"`
	CreatedAt       time.Time `json:"created_at"`
}
