package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

// SimulationCounter reports recent simulation volume; satisfied by the
// simulation store. Nil when persistence is disabled.
type SimulationCounter interface {
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

// HealthHandler serves the health endpoint with live service state: the
// configured symbol, the age of the current book, and recent volume.
type HealthHandler struct {
	books  BookReader
	counts SimulationCounter
	symbol string
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler. books and counts may be nil;
// the corresponding fields are then omitted from the payload.
func NewHealthHandler(books BookReader, counts SimulationCounter, symbol string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		books:  books,
		counts: counts,
		symbol: symbol,
		logger: logger,
	}
}

// healthResponse is the JSON payload of the health endpoint. Status is
// "ok" when a fresh book is available and "degraded" before the first
// snapshot or once the feed has gone quiet.
type healthResponse struct {
	Status         string `json:"status"`
	Symbol         string `json:"symbol,omitempty"`
	SnapshotAgeMS  *int64 `json:"snapshot_age_ms,omitempty"`
	Simulations24H *int64 `json:"simulations_24h,omitempty"`
	Timestamp      string `json:"timestamp"`
}

// maxSnapshotAge is how stale the book may be before the service reports
// itself degraded. Matches the Redis mirror TTL.
const maxSnapshotAge = 30 * time.Second

// HealthCheck reports service liveness and market-data freshness.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	resp := healthResponse{
		Status:    "ok",
		Symbol:    h.symbol,
		Timestamp: now.Format(time.RFC3339),
	}

	if h.books != nil {
		snap, err := h.books.Latest(r.Context(), h.symbol)
		if err != nil {
			resp.Status = "degraded"
		} else {
			age := now.Sub(snap.Timestamp).Milliseconds()
			if age < 0 {
				age = 0
			}
			resp.SnapshotAgeMS = &age
			if time.Duration(age)*time.Millisecond > maxSnapshotAge {
				resp.Status = "degraded"
			}
		}
	}

	if h.counts != nil {
		count, err := h.counts.CountSince(r.Context(), now.Add(-24*time.Hour))
		if err != nil {
			h.logger.WarnContext(r.Context(), "handler: health count failed",
				slog.String("error", err.Error()),
			)
		} else {
			resp.Simulations24H = &count
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// The simulation store must keep satisfying the counter interface.
var _ SimulationCounter = domain.SimulationStore(nil)
