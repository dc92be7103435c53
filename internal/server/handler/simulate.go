package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

// Simulator defines what the simulate handler requires from the service
// layer. It is declared locally so the handler package does not depend on
// the concrete service implementation.
type Simulator interface {
	Simulate(ctx context.Context, params domain.TradeParameters) (domain.SimulationResult, error)
}

// SimulateHandler serves the core cost-estimation endpoint.
type SimulateHandler struct {
	sims   Simulator
	logger *slog.Logger
}

// NewSimulateHandler creates a SimulateHandler with the given service and logger.
func NewSimulateHandler(sims Simulator, logger *slog.Logger) *SimulateHandler {
	return &SimulateHandler{
		sims:   sims,
		logger: logger,
	}
}

// Simulate estimates the execution cost of an order against the latest book.
// POST /api/simulate
//
// Request body: domain.TradeParameters JSON. Responses:
//
//	200 - domain.SimulationResult
//	400 - malformed body or invalid parameters / fee tier
//	422 - book state rejects the simulation (empty or crossed book)
//	503 - no snapshot available yet
func (h *SimulateHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var params domain.TradeParameters
	if err := decodeJSONBody(w, r, &params); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.sims.Simulate(r.Context(), params)
	if err != nil {
		h.writeSimulateError(w, r, params, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *SimulateHandler) writeSimulateError(w http.ResponseWriter, r *http.Request, params domain.TradeParameters, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidParams):
		writeError(w, http.StatusBadRequest, "invalid trade parameters")
	case errors.Is(err, domain.ErrUnknownFeeTier):
		writeError(w, http.StatusBadRequest, "unknown fee tier")
	case errors.Is(err, domain.ErrEmptyBook):
		writeError(w, http.StatusUnprocessableEntity, "orderbook side is empty")
	case errors.Is(err, domain.ErrCrossedBook):
		writeError(w, http.StatusUnprocessableEntity, "orderbook is crossed")
	case errors.Is(err, domain.ErrInvalidDepth):
		writeError(w, http.StatusUnprocessableEntity, "orderbook depth is unusable")
	case errors.Is(err, domain.ErrNoSnapshot):
		writeError(w, http.StatusServiceUnavailable, "no orderbook snapshot available yet")
	default:
		h.logger.ErrorContext(r.Context(), "handler: simulate failed",
			slog.String("symbol", params.Symbol),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "simulation failed")
	}
}
