package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/tradesim/internal/domain"
	"github.com/alanyoungcy/tradesim/internal/feed"
	"github.com/alanyoungcy/tradesim/internal/pipeline"
	"github.com/alanyoungcy/tradesim/internal/server"
	"github.com/alanyoungcy/tradesim/internal/server/handler"
	"github.com/alanyoungcy/tradesim/internal/server/ws"
)

// snapshotWaitTimeout bounds how long simulate mode waits for the first
// orderbook snapshot before giving up.
const snapshotWaitTimeout = 30 * time.Second

// ServeMode runs the long-lived service: the depth feed, the WebSocket hub,
// the HTTP API, and (when configured) the archiver.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)

	// Depth feed into the book service.
	wsFeed := feed.NewBinanceWSFeed(
		a.cfg.Exchange.WSURL,
		a.cfg.Exchange.Symbol,
		deps.Books.HandleSnapshot,
		a.logger,
	)
	g.Go(func() error {
		defer wsFeed.Close()
		return wsFeed.Run(ctx)
	})

	// WebSocket hub, only when the signal bus exists to feed it.
	var wsHub *ws.Hub
	if deps.SignalBus != nil {
		wsHub = ws.NewHub(deps.SignalBus, a.logger, ws.Config{
			Symbol:    a.cfg.Exchange.Symbol,
			StartedAt: time.Now().UTC(),
		})
		g.Go(func() error {
			return wsHub.Run(ctx)
		})
	}

	// HTTP API.
	if a.cfg.Server.Enabled {
		srv := server.NewServer(
			server.Config{
				Port:        a.cfg.Server.Port,
				CORSOrigins: a.cfg.Server.CORSOrigins,
				APIKey:      a.cfg.Server.APIKey,
				RateLimit:   a.cfg.Server.RateLimit,
				RateWindow:  a.cfg.Server.RateWindow.Duration,
			},
			server.Handlers{
				Health:      handler.NewHealthHandler(deps.Books, deps.SimulationStore, a.cfg.Exchange.Symbol, a.logger),
				Simulate:    handler.NewSimulateHandler(deps.Sims, a.logger),
				Orderbook:   handler.NewOrderbookHandler(deps.Books, a.logger),
				Simulations: handler.NewSimulationsHandler(deps.Sims, a.logger),
			},
			wsHub,
			deps.RateLimiter,
			a.logger,
		)
		g.Go(func() error {
			return srv.Start()
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	// Archiver.
	if a.cfg.Pipeline.ArchiveEnabled && deps.SimulationStore != nil && deps.BlobWriter != nil {
		arch := pipeline.NewArchiver(
			deps.SimulationStore,
			deps.BlobWriter,
			a.cfg.Pipeline.ArchiveRetention.Duration,
			a.cfg.Pipeline.ArchiveInterval.Duration,
			a.logger,
		)
		g.Go(func() error {
			return arch.RunLoop(ctx)
		})
	}

	return g.Wait()
}

// SimulateMode runs one cost estimate from the [request] config section and
// prints the result as JSON to stdout. It connects to the feed just long
// enough to obtain a snapshot, unless the Redis mirror already has one.
func (a *App) SimulateMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting simulate mode")

	params := domain.TradeParameters{
		Symbol:      a.cfg.Exchange.Symbol,
		Side:        domain.Side(a.cfg.Request.Side),
		SizeUSD:     a.cfg.Request.SizeUSD,
		Volatility:  a.cfg.Request.Volatility,
		FeeTier:     a.cfg.Request.FeeTier,
		TimeHorizon: a.cfg.Request.TimeHorizon,
	}

	if err := a.waitForSnapshot(ctx, deps); err != nil {
		return err
	}

	res, err := deps.Sims.Simulate(ctx, params)
	if err != nil {
		return fmt.Errorf("app: simulate: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("app: encode result: %w", err)
	}
	return nil
}

// waitForSnapshot makes a snapshot available in the book state: first from
// the Redis mirror, then by connecting to the live feed.
func (a *App) waitForSnapshot(ctx context.Context, deps *Dependencies) error {
	if deps.BookCache != nil {
		snap, err := deps.BookCache.GetSnapshot(ctx, a.cfg.Exchange.Symbol)
		if err == nil {
			deps.BookState.Set(snap)
			a.logger.Info("using cached orderbook snapshot",
				slog.Time("snapshot_time", snap.Timestamp),
			)
			return nil
		}
	}

	ready := make(chan struct{})
	var once bool
	wsFeed := feed.NewBinanceWSFeed(
		a.cfg.Exchange.WSURL,
		a.cfg.Exchange.Symbol,
		func(ctx context.Context, snap domain.OrderbookSnapshot) {
			deps.Books.HandleSnapshot(ctx, snap)
			if !once {
				once = true
				close(ready)
			}
		},
		a.logger,
	)

	feedCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		defer wsFeed.Close()
		_ = wsFeed.Run(feedCtx)
	}()

	select {
	case <-ready:
		return nil
	case <-time.After(snapshotWaitTimeout):
		return fmt.Errorf("app: %w: no snapshot within %s", domain.ErrNoSnapshot, snapshotWaitTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ArchiveMode runs a single archive pass and exits.
func (a *App) ArchiveMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting archive mode")

	if deps.SimulationStore == nil || deps.BlobWriter == nil {
		return fmt.Errorf("app: archive mode requires postgres and s3 to be enabled")
	}

	arch := pipeline.NewArchiver(
		deps.SimulationStore,
		deps.BlobWriter,
		a.cfg.Pipeline.ArchiveRetention.Duration,
		a.cfg.Pipeline.ArchiveInterval.Duration,
		a.logger,
	)

	archived, err := arch.Run(ctx)
	if err != nil {
		return fmt.Errorf("app: archive: %w", err)
	}
	a.logger.Info("archive mode complete", slog.Int64("records", archived))
	return nil
}
