package skufamilies

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/promoflow/promoflow/internal/platform/httpx"
	"github.com/promoflow/promoflow/internal/rbac"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Routes mounts the SKU-family endpoints. Mutations require the
// MANAGE_SKUS capability.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Group(func(r chi.Router) {
		r.Use(rbac.RequirePermission(rbac.PermManageSKUs))
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

type familyPayload struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	SKUs []string `json:"skus"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list sku families", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	family, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, family)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var payload familyPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	family, err := h.service.Create(r.Context(), SKUFamily{ID: payload.ID, Name: payload.Name, SKUs: payload.SKUs})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, family)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var payload familyPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	family := SKUFamily{ID: chi.URLParam(r, "id"), Name: payload.Name, SKUs: payload.SKUs}
	if err := h.service.Update(r.Context(), family); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, family)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
