package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/tradesim/internal/domain"
	"github.com/alanyoungcy/tradesim/internal/engine"
)

// resultStream is the bounded stream every completed simulation is appended
// to, alongside the ephemeral pub/sub fan-out.
const resultStream = "sim:results"

// SimulationService runs cost estimates against the latest book and takes
// care of everything the pure engine does not: request IDs, timing,
// persistence, and result publication.
type SimulationService struct {
	sim    *engine.Simulator
	books  *BookService
	store  domain.SimulationStore
	bus    domain.SignalBus
	logger *slog.Logger
}

// NewSimulationService creates a SimulationService. store and bus may be
// nil; persistence and publication are then skipped.
func NewSimulationService(sim *engine.Simulator, books *BookService, store domain.SimulationStore, bus domain.SignalBus, logger *slog.Logger) *SimulationService {
	return &SimulationService{
		sim:    sim,
		books:  books,
		store:  store,
		bus:    bus,
		logger: logger.With(slog.String("component", "simulation_service")),
	}
}

// Simulate resolves the current snapshot for params.Symbol, runs the
// engine, and decorates the result. Engine errors pass through unchanged so
// callers can classify them with errors.Is.
func (s *SimulationService) Simulate(ctx context.Context, params domain.TradeParameters) (domain.SimulationResult, error) {
	snap, err := s.books.Latest(ctx, params.Symbol)
	if err != nil {
		return domain.SimulationResult{}, fmt.Errorf("service: simulate %s: %w", params.Symbol, err)
	}

	start := time.Now()
	res, err := s.sim.Simulate(snap, params)
	if err != nil {
		return domain.SimulationResult{}, err
	}

	res.ID = uuid.NewString()
	res.ComputedAt = time.Now().UTC()
	res.ComputeUS = time.Since(start).Microseconds()

	// Persistence and publication are best effort: the estimate is already
	// computed and the caller should not lose it to a storage hiccup.
	if s.store != nil {
		if err := s.store.Insert(ctx, recordFromResult(res, params)); err != nil {
			s.logger.Warn("failed to persist simulation",
				slog.String("id", res.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	if s.bus != nil {
		if payload, err := json.Marshal(res); err == nil {
			if err := s.bus.Publish(ctx, "sim:result", payload); err != nil {
				s.logger.Debug("failed to publish simulation result",
					slog.String("error", err.Error()),
				)
			}
			// The bounded stream keeps a replayable tail of recent results
			// for consumers that attach after the fact.
			if err := s.bus.StreamAppend(ctx, resultStream, payload); err != nil {
				s.logger.Debug("failed to append result to stream",
					slog.String("error", err.Error()),
				)
			}
		}
	}

	s.logger.Info("simulation complete",
		slog.String("id", res.ID),
		slog.String("symbol", res.Symbol),
		slog.String("side", string(res.Side)),
		slog.Float64("size_usd", res.SizeUSD),
		slog.Float64("total_cost_usd", res.TotalCostUSD),
		slog.Bool("partial_fill", res.PartialFill),
		slog.Int64("compute_us", res.ComputeUS),
	)
	return res, nil
}

// History lists persisted simulations, newest first.
func (s *SimulationService) History(ctx context.Context, symbol string, opts domain.ListOpts) ([]domain.SimulationRecord, error) {
	if s.store == nil {
		return nil, fmt.Errorf("service: history: %w", domain.ErrNotFound)
	}
	return s.store.List(ctx, symbol, opts)
}

// Get returns one persisted simulation by ID.
func (s *SimulationService) Get(ctx context.Context, id string) (domain.SimulationRecord, error) {
	if s.store == nil {
		return domain.SimulationRecord{}, fmt.Errorf("service: get: %w", domain.ErrNotFound)
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.SimulationRecord{}, fmt.Errorf("service: get %q: %w", id, domain.ErrNotFound)
	}
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.SimulationRecord{}, err
		}
		return domain.SimulationRecord{}, fmt.Errorf("service: get %q: %w", id, err)
	}
	return rec, nil
}

func recordFromResult(res domain.SimulationResult, params domain.TradeParameters) domain.SimulationRecord {
	return domain.SimulationRecord{
		ID:              res.ID,
		Symbol:          res.Symbol,
		Side:            res.Side,
		SizeUSD:         res.SizeUSD,
		Volatility:      params.Volatility,
		FeeTier:         params.FeeTier,
		SlippagePct:     res.SlippagePct,
		MarketImpactPct: res.MarketImpactPct,
		FeeUSD:          res.FeeUSD,
		TotalCostUSD:    res.TotalCostUSD,
		MakerProb:       res.MakerProbability,
		PartialFill:     res.PartialFill,
		FilledQuantity:  res.Walk.FilledQuantity,
		AveragePrice:    res.Walk.AveragePrice,
		UnfilledUSD:     res.Walk.UnfilledUSD,
		LevelsConsumed:  res.Walk.LevelsConsumed,
		SnapshotTime:    res.SnapshotTime,
		CreatedAt:       res.ComputedAt,
	}
}
