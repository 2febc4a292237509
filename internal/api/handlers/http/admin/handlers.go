package admin

import (
	"context"
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/ginona/tucalerta/internal/domain"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type StatsHandler interface {
	GetStats(ctx context.Context) (*domain.AlertStats, error)
}

type Handler struct {
	logger       *slog.Logger
	StatsHandler StatsHandler
}

func NewHandler(logger *slog.Logger, statsHandler StatsHandler) *Handler {
	return &Handler{
		logger:       logger,
		StatsHandler: statsHandler,
	}
}

func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.StatsHandler.GetStats(r.Context())
	if err != nil {
		h.logger.Error("stats failed", slog.Any("error", err))
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("json encode failed", slog.Any("error", err))
	}
}
