package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

// SimulationHistory defines what the history handler requires from the
// service layer.
type SimulationHistory interface {
	History(ctx context.Context, symbol string, opts domain.ListOpts) ([]domain.SimulationRecord, error)
	Get(ctx context.Context, id string) (domain.SimulationRecord, error)
}

// SimulationsHandler serves persisted simulation history.
type SimulationsHandler struct {
	history SimulationHistory
	logger  *slog.Logger
}

// NewSimulationsHandler creates a SimulationsHandler with the given service
// and logger.
func NewSimulationsHandler(history SimulationHistory, logger *slog.Logger) *SimulationsHandler {
	return &SimulationsHandler{
		history: history,
		logger:  logger,
	}
}

// listSimulationsResponse wraps the list endpoint output with paging echo.
type listSimulationsResponse struct {
	Simulations []domain.SimulationRecord `json:"simulations"`
	Limit       int                       `json:"limit"`
	Offset      int                       `json:"offset"`
}

// ListSimulations returns past simulations, newest first.
// GET /api/simulations?symbol=BTCUSDT&limit=50&offset=0&since=...&until=...
func (h *SimulationsHandler) ListSimulations(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)
	symbol := r.URL.Query().Get("symbol")

	recs, err := h.history.History(r.Context(), symbol, opts)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// History is disabled when no store is configured.
			writeError(w, http.StatusNotFound, "simulation history is not enabled")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: list simulations failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list simulations")
		return
	}
	if recs == nil {
		recs = []domain.SimulationRecord{}
	}

	writeJSON(w, http.StatusOK, listSimulationsResponse{
		Simulations: recs,
		Limit:       opts.Limit,
		Offset:      opts.Offset,
	})
}

// GetSimulation returns a single persisted simulation by its ID.
// GET /api/simulations/{id}
func (h *SimulationsHandler) GetSimulation(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing simulation id")
		return
	}

	rec, err := h.history.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "simulation not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get simulation failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get simulation")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
