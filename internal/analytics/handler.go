package analytics

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/promoflow/promoflow/internal/platform/httpx"
	"github.com/promoflow/promoflow/internal/rbac"
)

// Handler exposes the analytics endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Routes mounts the analytics endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.With(rbac.RequirePermission(rbac.PermViewAnalytics)).Get("/summary", h.Summary)
	r.With(rbac.RequirePermission(rbac.PermViewAnalytics)).Get("/volume-freshness", h.VolumeFreshness)
	r.With(rbac.RequirePermission(rbac.PermDataUpload)).Post("/volume-upload", h.VolumeUpload)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("compute analytics summary", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) VolumeFreshness(w http.ResponseWriter, r *http.Request) {
	freshness, err := h.service.VolumeFreshness(r.Context())
	if err != nil {
		h.logger.Error("load volume freshness", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, freshness)
}

func (h *Handler) VolumeUpload(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RecordVolumeUpload(r.Context()); err != nil {
		h.logger.Error("record volume upload", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	freshness, err := h.service.VolumeFreshness(r.Context())
	if err != nil {
		h.logger.Error("load volume freshness", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, freshness)
}
