package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

// BookReader defines what the orderbook handler requires from the service
// layer.
type BookReader interface {
	Latest(ctx context.Context, symbol string) (domain.OrderbookSnapshot, error)
}

// OrderbookHandler serves read access to the live orderbook.
type OrderbookHandler struct {
	books  BookReader
	logger *slog.Logger
}

// NewOrderbookHandler creates an OrderbookHandler with the given service and
// logger.
func NewOrderbookHandler(books BookReader, logger *slog.Logger) *OrderbookHandler {
	return &OrderbookHandler{
		books:  books,
		logger: logger,
	}
}

// GetOrderbook returns the latest snapshot for a symbol.
// GET /api/orderbook/{symbol}
func (h *OrderbookHandler) GetOrderbook(w http.ResponseWriter, r *http.Request) {
	symbol := pathParam(r, "symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol")
		return
	}

	snap, err := h.books.Latest(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, domain.ErrNoSnapshot) || errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusServiceUnavailable, "no orderbook snapshot available yet")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get orderbook failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get orderbook")
		return
	}

	writeJSON(w, http.StatusOK, snap)
}
