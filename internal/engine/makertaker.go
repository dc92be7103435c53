package engine

import "math"

// MakerProbability estimates the probability that the order completes as a
// liquidity-adding (maker) order. The monotone score
//
//	bias − sizeW·(size_usd/top_depth_usd) − levelW·max(0, levels−1) + spreadW·spread_ratio
//
// is mapped through a logistic curve onto [0,1]. spread_ratio is the
// relative spread divided by (σ + floor): wide spreads relative to
// volatility leave room to rest passively, while orders that are large
// against top-of-book depth or that would cross multiple levels bias
// strongly toward taker.
//
// A non-positive top-of-book depth means there is nothing to rest against;
// the order is classified as pure taker.
func (c Config) MakerProbability(sizeUSD, topDepthUSD, spread, mid, volatility float64, levelsNeeded int) float64 {
	if topDepthUSD <= 0 {
		return 0
	}

	sizeRatio := sizeUSD / topDepthUSD

	extraLevels := float64(levelsNeeded - 1)
	if extraLevels < 0 {
		extraLevels = 0
	}

	var spreadRatio float64
	if mid > 0 && spread > 0 {
		spreadRatio = (spread / mid) / (volatility + c.VolatilityFloor)
	}

	score := c.MakerBias -
		c.MakerSizeWeight*sizeRatio -
		c.MakerLevelWeight*extraLevels +
		c.MakerSpreadWeight*spreadRatio

	return logistic(score)
}

// logistic is the standard sigmoid 1/(1+e^−x).
func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
