package rules

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/promoflow/promoflow/internal/platform/httpx"
	"github.com/promoflow/promoflow/internal/rbac"
)

// Handler exposes the rules endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// Routes mounts the rules endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Get)
	r.With(rbac.RequirePermission(rbac.PermManageRules)).Put("/", h.Update)
}

type rulesPayload struct {
	MaxDiscountPercentage  float64 `json:"maxDiscountPercentage" validate:"gte=0,lte=100"`
	MinTimeBetweenRequests int     `json:"minTimeBetweenRequests" validate:"gte=0"`
	DailyVolumeLimit       int     `json:"dailyVolumeLimit" validate:"gte=0"`
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	current, err := h.service.Current(r.Context())
	if err != nil {
		h.logger.Error("load rules", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, current)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var payload rulesPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	updated, err := h.service.Update(r.Context(), Rules{
		MaxDiscountPercentage:  payload.MaxDiscountPercentage,
		MinTimeBetweenRequests: payload.MinTimeBetweenRequests,
		DailyVolumeLimit:       payload.DailyVolumeLimit,
	})
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}
