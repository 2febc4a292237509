package public

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ginona/tucalerta/pkg/e"
)

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, e.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, e.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, e.ErrAlreadyVoted),
		errors.Is(err, e.ErrSelfVote),
		errors.Is(err, e.ErrInvalidLocality),
		errors.Is(err, e.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, e.ErrConflict):
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
		h.log(r).Error("request failed", slog.Any("error", err))
	}

	code := e.Code(err)
	if code == "" {
		code = "INTERNAL_ERROR"
	}
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}

	h.writeJSON(w, status, errorBody(code, message))
}

func errorBody(code, message string) map[string]string {
	return map[string]string{
		"error":   message,
		"code":    code,
		"message": message,
	}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("json encode failed", slog.Any("error", err))
	}
}
