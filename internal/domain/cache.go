package domain

import (
	"context"
	"time"
)

// OrderbookCache mirrors the latest snapshot per symbol so that one-shot
// tools and restarts can simulate without waiting for the live feed.
type OrderbookCache interface {
	SetSnapshot(ctx context.Context, symbol string, snap OrderbookSnapshot) error
	// GetSnapshot returns ErrNotFound when no snapshot exists for the symbol.
	GetSnapshot(ctx context.Context, symbol string) (OrderbookSnapshot, error)
}

// SignalBus is a lightweight pub/sub fabric for pushing book updates and
// simulation results to consumers such as the WebSocket hub.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe returns a channel of raw payloads. The subscription closes
	// when ctx is cancelled.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	// StreamAppend appends to a durable, bounded stream.
	StreamAppend(ctx context.Context, stream string, payload []byte) error
}

// RateLimiter bounds request rates per key.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
