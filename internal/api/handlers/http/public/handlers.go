package public

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ginona/tucalerta/internal/domain"
	"github.com/ginona/tucalerta/internal/middleware"
	"github.com/ginona/tucalerta/pkg/validator"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type AlertHandler interface {
	Create(ctx context.Context, req domain.CreateAlertRequest, deviceID string) (*domain.Alert, error)
	Vote(ctx context.Context, alertID uuid.UUID, deviceID string, vt domain.VoteType) (*domain.Alert, error)
	List(ctx context.Context, f domain.AlertFilters) ([]*domain.Alert, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Alert, error)
	CanDeviceReport(ctx context.Context, deviceID string) (bool, error)
	Localities(ctx context.Context) ([]*domain.Locality, error)
}

type Handler struct {
	logger       *slog.Logger
	AlertHandler AlertHandler
}

func NewHandler(logger *slog.Logger, alertHandler AlertHandler) *Handler {
	return &Handler{
		logger:       logger,
		AlertHandler: alertHandler,
	}
}

func (h *Handler) AlertList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := domain.AlertFilters{
		Type:          domain.AlertType(q.Get("type")),
		LocalityID:    q.Get("localityId"),
		IncludeHidden: q.Get("includeHidden") == "true",
	}

	alerts, err := h.AlertHandler.List(r.Context(), filters)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, alerts)
}

func (h *Handler) AlertGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", "alert id must be a valid UUID"))
		return
	}

	alert, err := h.AlertHandler.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, alert)
}

func (h *Handler) AlertCreate(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAlertRequest

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", "invalid JSON"))
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		h.writeJSON(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", "invalid JSON"))
		return
	}

	req.Description = sanitizeText(req.Description)
	req.Lat = req.Coordinates[0]
	req.Lng = req.Coordinates[1]

	if err := validator.ValidateStruct(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", err.Error()))
		return
	}

	deviceID := middleware.DeviceIDFrom(r.Context())

	alert, err := h.AlertHandler.Create(r.Context(), req, deviceID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, alert)
}

func (h *Handler) AlertVote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", "alert id must be a valid UUID"))
		return
	}

	var req domain.VoteAlertRequest

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", "invalid JSON"))
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody("VALIDATION_ERROR", err.Error()))
		return
	}

	deviceID := middleware.DeviceIDFrom(r.Context())

	alert, err := h.AlertHandler.Vote(r.Context(), id, deviceID, req.VoteType)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, alert)
}

func (h *Handler) CanReport(w http.ResponseWriter, r *http.Request) {
	deviceID := middleware.DeviceIDFrom(r.Context())

	canReport, err := h.AlertHandler.CanDeviceReport(r.Context(), deviceID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"can_report": canReport})
}

func (h *Handler) LocalityList(w http.ResponseWriter, r *http.Request) {
	localities, err := h.AlertHandler.Localities(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, localities)
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

func sanitizeText(s string) string {
	s = strings.TrimSpace(s)
	s = htmlTagRe.ReplaceAllString(s, "")
	return strings.NewReplacer("<", "", ">", "").Replace(s)
}
