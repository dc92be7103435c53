package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

// snapshotTTL bounds how stale a cached book can be. A snapshot older than
// this is useless for cost estimation, so Redis expires it rather than the
// reader having to check.
const snapshotTTL = 30 * time.Second

// OrderbookCache implements domain.OrderbookCache by storing each symbol's
// snapshot as a single JSON value.
//
// Key schema:
//
//	book:{symbol}:snapshot - JSON-encoded domain.OrderbookSnapshot, with TTL
//	book:{symbol}:meta     - hash with "ts" (snapshot time, unix nanos) and
//	                         "levels" (bid+ask level count)
//
// Snapshots are immutable values, so a whole-value swap keeps readers from
// ever seeing a half-written book.
type OrderbookCache struct {
	rdb *redis.Client
}

// NewOrderbookCache creates an OrderbookCache backed by the given Client.
func NewOrderbookCache(c *Client) *OrderbookCache {
	return &OrderbookCache{rdb: c.Underlying()}
}

func bookSnapshotKey(symbol string) string { return "book:" + symbol + ":snapshot" }
func bookMetaKey(symbol string) string     { return "book:" + symbol + ":meta" }

// SetSnapshot replaces the cached snapshot for a symbol.
func (oc *OrderbookCache) SetSnapshot(ctx context.Context, symbol string, snap domain.OrderbookSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: encode snapshot %s: %w", symbol, err)
	}

	pipe := oc.rdb.TxPipeline()
	pipe.Set(ctx, bookSnapshotKey(symbol), payload, snapshotTTL)
	pipe.HSet(ctx, bookMetaKey(symbol), map[string]interface{}{
		"ts":     snap.Timestamp.UnixNano(),
		"levels": len(snap.Bids) + len(snap.Asks),
	})
	pipe.Expire(ctx, bookMetaKey(symbol), snapshotTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set snapshot %s: %w", symbol, err)
	}
	return nil
}

// GetSnapshot returns the cached snapshot for a symbol. It returns
// domain.ErrNotFound when no snapshot exists or it has expired.
func (oc *OrderbookCache) GetSnapshot(ctx context.Context, symbol string) (domain.OrderbookSnapshot, error) {
	payload, err := oc.rdb.Get(ctx, bookSnapshotKey(symbol)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return domain.OrderbookSnapshot{}, domain.ErrNotFound
		}
		return domain.OrderbookSnapshot{}, fmt.Errorf("redis: get snapshot %s: %w", symbol, err)
	}

	var snap domain.OrderbookSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return domain.OrderbookSnapshot{}, fmt.Errorf("redis: decode snapshot %s: %w", symbol, err)
	}
	return snap, nil
}

// Compile-time interface check.
var _ domain.OrderbookCache = (*OrderbookCache)(nil)
