package domain

import "time"

// PriceLevel is a single price+size entry in an orderbook.
type PriceLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// OrderbookSnapshot is one fully-formed view of the book for a symbol.
// Bids are ordered by price descending, asks ascending. A snapshot is
// immutable once constructed; the feed replaces the whole value on every
// update rather than mutating levels in place, so a simulation always
// observes a consistent book.
type OrderbookSnapshot struct {
	Symbol    string       `json:"symbol"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	BestBid   float64      `json:"best_bid"`
	BestAsk   float64      `json:"best_ask"`
	MidPrice  float64      `json:"mid_price"`
	Spread    float64      `json:"spread"`
	Timestamp time.Time    `json:"timestamp"`
}
