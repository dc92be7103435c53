// Package feed maintains the live orderbook snapshot consumed by
// simulations. It connects to an exchange depth stream, normalizes each
// message into a domain.OrderbookSnapshot, and hands it to a handler; the
// snapshot holder in this package guarantees that a simulation always sees
// one immutable, fully-formed book.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// pongWait is the time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// reconnectDelay is the pause before re-dialing after a disconnect.
	reconnectDelay = 2 * time.Second
)

// SnapshotHandler is called for each normalized orderbook snapshot.
type SnapshotHandler func(ctx context.Context, snap domain.OrderbookSnapshot)

// BinanceWSFeed consumes a Binance-style partial depth stream
// (e.g. wss://stream.binance.com:9443/ws/btcusdt@depth20@100ms) and invokes
// the handler with a fresh snapshot per message. It reconnects with a fixed
// delay on disconnect and runs until its context is cancelled.
type BinanceWSFeed struct {
	wsURL      string
	symbol     string
	onSnapshot SnapshotHandler
	logger     *slog.Logger
	closeOnce  sync.Once
	done       chan struct{}
}

// NewBinanceWSFeed creates a feed for one symbol. wsURL is the full stream
// URL; symbol is the canonical name stamped on every snapshot.
func NewBinanceWSFeed(wsURL, symbol string, onSnapshot SnapshotHandler, logger *slog.Logger) *BinanceWSFeed {
	return &BinanceWSFeed{
		wsURL:      wsURL,
		symbol:     strings.ToUpper(symbol),
		onSnapshot: onSnapshot,
		logger:     logger.With(slog.String("component", "binance_ws_feed")),
		done:       make(chan struct{}),
	}
}

// Run connects and pumps snapshots until ctx is cancelled or Close is
// called. Connection failures are logged and retried.
func (f *BinanceWSFeed) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		default:
		}

		err := f.runConnection(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.logger.Warn("depth stream disconnected, reconnecting",
			slog.String("url", f.wsURL),
			slog.String("error", err.Error()),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

// Close stops the feed.
func (f *BinanceWSFeed) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}

func (f *BinanceWSFeed) runConnection(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	conn, _, err := dialer.DialContext(ctx, f.wsURL, nil)
	if err != nil {
		return fmt.Errorf("feed: dial %s: %w", f.wsURL, err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	f.logger.Info("depth stream connected", slog.String("symbol", f.symbol))

	// Ping loop; Binance also sends server pings which gorilla answers
	// automatically.
	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-pingCtx.Done():
				return
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return fmt.Errorf("feed: %w", domain.ErrWSDisconnect)
		default:
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("feed: read: %w", err)
		}

		snap, err := ParseDepthMessage(f.symbol, data)
		if err != nil {
			f.logger.Debug("skipping unparseable depth message",
				slog.String("error", err.Error()),
				slog.Int("payload_len", len(data)),
			)
			continue
		}
		if f.onSnapshot != nil {
			f.onSnapshot(ctx, snap)
		}
	}
}

// depthMessage covers both the partial-depth shape (bids/asks) and the
// diff-depth shape (b/a) of the Binance stream. Levels arrive as
// [price, qty] string pairs.
type depthMessage struct {
	LastUpdateID int64      `json:"lastUpdateId"`
	EventTime    int64      `json:"E"` // milliseconds, diff stream only
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
	B            [][]string `json:"b"`
	A            [][]string `json:"a"`
}

// ParseDepthMessage normalizes one raw depth payload into a snapshot.
// Zero-quantity levels (removals on the diff stream) are dropped. The
// exchange delivers bids descending and asks ascending; that ordering is
// preserved.
func ParseDepthMessage(symbol string, data []byte) (domain.OrderbookSnapshot, error) {
	var msg depthMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return domain.OrderbookSnapshot{}, fmt.Errorf("feed: decode depth message: %w", err)
	}

	rawBids, rawAsks := msg.Bids, msg.Asks
	if len(rawBids) == 0 && len(rawAsks) == 0 {
		rawBids, rawAsks = msg.B, msg.A
	}

	bids, err := parseLevels(rawBids)
	if err != nil {
		return domain.OrderbookSnapshot{}, fmt.Errorf("feed: bids: %w", err)
	}
	asks, err := parseLevels(rawAsks)
	if err != nil {
		return domain.OrderbookSnapshot{}, fmt.Errorf("feed: asks: %w", err)
	}
	if len(bids) == 0 && len(asks) == 0 {
		return domain.OrderbookSnapshot{}, fmt.Errorf("feed: depth message has no levels")
	}

	ts := time.Now().UTC()
	if msg.EventTime > 0 {
		ts = time.UnixMilli(msg.EventTime).UTC()
	}

	snap := domain.OrderbookSnapshot{
		Symbol:    symbol,
		Bids:      bids,
		Asks:      asks,
		Timestamp: ts,
	}
	if len(bids) > 0 {
		snap.BestBid = bids[0].Price
	}
	if len(asks) > 0 {
		snap.BestAsk = asks[0].Price
	}
	if snap.BestBid > 0 && snap.BestAsk > 0 {
		snap.MidPrice = (snap.BestBid + snap.BestAsk) / 2
		snap.Spread = snap.BestAsk - snap.BestBid
	}
	return snap, nil
}

func parseLevels(raw [][]string) ([]domain.PriceLevel, error) {
	levels := make([]domain.PriceLevel, 0, len(raw))
	for _, pair := range raw {
		if len(pair) < 2 {
			return nil, fmt.Errorf("level %v is not a [price, qty] pair", pair)
		}
		price, err := strconv.ParseFloat(pair[0], 64)
		if err != nil {
			return nil, fmt.Errorf("price %q: %w", pair[0], err)
		}
		size, err := strconv.ParseFloat(pair[1], 64)
		if err != nil {
			return nil, fmt.Errorf("size %q: %w", pair[1], err)
		}
		if size <= 0 {
			continue
		}
		levels = append(levels, domain.PriceLevel{Price: price, Size: size})
	}
	return levels, nil
}
