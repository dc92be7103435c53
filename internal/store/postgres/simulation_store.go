package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

// SimulationStore implements domain.SimulationStore using PostgreSQL.
type SimulationStore struct {
	pool *pgxpool.Pool
}

// NewSimulationStore creates a SimulationStore backed by the given pool.
func NewSimulationStore(pool *pgxpool.Pool) *SimulationStore {
	return &SimulationStore{pool: pool}
}

const simulationSelectCols = `id, symbol, side, size_usd, volatility, fee_tier,
	slippage_pct, market_impact_pct, fee_usd, total_cost_usd, maker_prob,
	partial_fill, filled_quantity, average_price, unfilled_usd,
	levels_consumed, snapshot_time, created_at`

func scanSimulationRow(row pgx.Row) (domain.SimulationRecord, error) {
	var r domain.SimulationRecord
	err := row.Scan(
		&r.ID, &r.Symbol, &r.Side, &r.SizeUSD, &r.Volatility, &r.FeeTier,
		&r.SlippagePct, &r.MarketImpactPct, &r.FeeUSD, &r.TotalCostUSD,
		&r.MakerProb, &r.PartialFill, &r.FilledQuantity, &r.AveragePrice,
		&r.UnfilledUSD, &r.LevelsConsumed, &r.SnapshotTime, &r.CreatedAt,
	)
	return r, err
}

// Insert persists one simulation record. Re-inserting the same ID is a
// no-op via ON CONFLICT DO NOTHING.
func (s *SimulationStore) Insert(ctx context.Context, rec domain.SimulationRecord) error {
	const query = `
		INSERT INTO simulations (
			id, symbol, side, size_usd, volatility, fee_tier,
			slippage_pct, market_impact_pct, fee_usd, total_cost_usd,
			maker_prob, partial_fill, filled_quantity, average_price,
			unfilled_usd, levels_consumed, snapshot_time, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14,
			$15, $16, $17, $18
		) ON CONFLICT (id) DO NOTHING`

	_, err := s.pool.Exec(ctx, query,
		rec.ID, rec.Symbol, rec.Side, rec.SizeUSD, rec.Volatility, rec.FeeTier,
		rec.SlippagePct, rec.MarketImpactPct, rec.FeeUSD, rec.TotalCostUSD,
		rec.MakerProb, rec.PartialFill, rec.FilledQuantity, rec.AveragePrice,
		rec.UnfilledUSD, rec.LevelsConsumed, rec.SnapshotTime, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert simulation %s: %w", rec.ID, err)
	}
	return nil
}

// GetByID returns one simulation record, or domain.ErrNotFound.
func (s *SimulationStore) GetByID(ctx context.Context, id string) (domain.SimulationRecord, error) {
	query := `SELECT ` + simulationSelectCols + ` FROM simulations WHERE id = $1`

	rec, err := scanSimulationRow(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SimulationRecord{}, domain.ErrNotFound
		}
		return domain.SimulationRecord{}, fmt.Errorf("postgres: get simulation %s: %w", id, err)
	}
	return rec, nil
}

// buildListQuery assembles the SELECT for List. Until is a strict upper
// bound, matching DeleteBefore, so that archiving with Until = cutoff and
// deleting with DeleteBefore(cutoff) cover exactly the same rows.
func buildListQuery(symbol string, opts domain.ListOpts) (string, []any) {
	query := `SELECT ` + simulationSelectCols + ` FROM simulations WHERE 1=1`
	var args []any
	argIdx := 1

	if symbol != "" {
		query += fmt.Sprintf(" AND symbol = $%d", argIdx)
		args = append(args, symbol)
		argIdx++
	}
	if opts.Since != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *opts.Since)
		argIdx++
	}
	if opts.Until != nil {
		query += fmt.Sprintf(" AND created_at < $%d", argIdx)
		args = append(args, *opts.Until)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	return query, args
}

// List returns simulation records, newest first, with pagination and
// optional symbol / time-range filtering.
func (s *SimulationStore) List(ctx context.Context, symbol string, opts domain.ListOpts) ([]domain.SimulationRecord, error) {
	query, args := buildListQuery(symbol, opts)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list simulations: %w", err)
	}
	defer rows.Close()

	var recs []domain.SimulationRecord
	for rows.Next() {
		rec, err := scanSimulationRow(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan simulation: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list simulations: %w", err)
	}
	return recs, nil
}

// DeleteBefore removes records created before cutoff and returns the number
// deleted.
func (s *SimulationStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM simulations WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete simulations before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}

// CountSince returns the number of records created at or after since.
func (s *SimulationStore) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM simulations WHERE created_at >= $1", since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("postgres: count simulations: %w", err)
	}
	return count, nil
}

// Compile-time interface check.
var _ domain.SimulationStore = (*SimulationStore)(nil)
