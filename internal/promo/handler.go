package promo

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/promoflow/promoflow/internal/platform/httpx"
	"github.com/promoflow/promoflow/internal/rbac"
	"github.com/promoflow/promoflow/internal/tabular"
)

// Handler exposes the request lifecycle over HTTP: CRUD on single
// requests, the two bulk import pipelines, and the pending-decisions
// export.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	maxBytes int64
}

// NewHandler constructs Handler. maxBytes caps uploaded import files.
func NewHandler(logger *slog.Logger, service *Service, maxBytes int64) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), maxBytes: maxBytes}
}

// Routes mounts the request lifecycle endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/requests", h.List)
	r.Get("/requests/{id}", h.Get)
	r.Post("/requests", h.Create)
	r.Put("/requests/{id}", h.Update)
	r.With(rbac.RequirePermission(rbac.PermApproveRequests)).Post("/requests/{id}/decision", h.Decide)
	r.Post("/requests/{id}/cancel", h.Cancel)

	r.With(rbac.RequirePermission(rbac.PermBulkUploadRequests)).Post("/imports/requests", h.PreviewImport)
	r.With(rbac.RequirePermission(rbac.PermBulkUploadRequests)).Post("/imports/requests/commit", h.CommitImport)
	r.With(rbac.RequirePermission(rbac.PermApproveRequests)).Post("/imports/decisions", h.PreviewDecisions)
	r.With(rbac.RequirePermission(rbac.PermApproveRequests)).Post("/imports/decisions/commit", h.CommitDecisions)
	r.With(rbac.RequirePermission(rbac.PermApproveRequests)).Get("/exports/pending-decisions", h.ExportPending)
}

type requestPayload struct {
	SKU                   string  `json:"sku" validate:"required"`
	Description           string  `json:"description" validate:"required"`
	PriceFrom             float64 `json:"priceFrom" validate:"required,gt=0"`
	PriceTo               float64 `json:"priceTo" validate:"required,gt=0"`
	StartDate             string  `json:"startDate" validate:"required"`
	EndDate               string  `json:"endDate" validate:"required"`
	StoreGroupID          string  `json:"storeGroupId"`
	HasRebate             bool    `json:"hasRebate"`
	RebateValue           float64 `json:"rebateValue"`
	CommercialObservation string  `json:"commercialObservation"`
	RequestModification   bool    `json:"requestModification"`
}

func (p requestPayload) toDraft() (Draft, error) {
	start, ok := parseFlexibleDate(p.StartDate)
	if !ok {
		return Draft{}, errors.New("startDate must be DD/MM/YYYY or YYYY-MM-DD")
	}
	end, ok := parseFlexibleDate(p.EndDate)
	if !ok {
		return Draft{}, errors.New("endDate must be DD/MM/YYYY or YYYY-MM-DD")
	}
	return Draft{
		SKU:                   p.SKU,
		Description:           p.Description,
		PriceFrom:             p.PriceFrom,
		PriceTo:               p.PriceTo,
		StartDate:             start,
		EndDate:               end,
		StoreGroupID:          p.StoreGroupID,
		HasRebate:             p.HasRebate,
		RebateValue:           p.RebateValue,
		CommercialObservation: p.CommercialObservation,
	}, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.ActorFromContext(r.Context())
	status := strings.ToUpper(r.URL.Query().Get("status"))
	if status == "ALL" {
		status = ""
	}
	filter := ListFilter{
		Status: Status(status),
		Search: r.URL.Query().Get("search"),
	}
	views, err := h.service.List(r.Context(), actor, filter)
	if err != nil {
		h.logger.Error("list requests", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "request not found")
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var payload requestPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	draft, err := payload.toDraft()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	changed, err := h.service.Dispatch(r.Context(), CreateCommand{Draft: draft, Actor: actorFrom(r)})
	if err != nil {
		h.respondCommandError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, changed[0])
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var payload requestPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	draft, err := payload.toDraft()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	actor := actorFrom(r)
	var cmd Command
	if payload.RequestModification {
		cmd = RequestModificationCommand{ID: id, Draft: draft, Actor: actor}
	} else {
		cmd = EditCommand{ID: id, Draft: draft, Actor: actor}
	}
	changed, err := h.service.Dispatch(r.Context(), cmd)
	if err != nil {
		h.respondCommandError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, changed[0])
}

type decisionPayload struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason"`
}

func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	var payload decisionPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	changed, err := h.service.Dispatch(r.Context(), DecideCommand{
		ID:     chi.URLParam(r, "id"),
		Target: Status(strings.ToUpper(payload.Status)),
		Reason: payload.Reason,
		Actor:  actorFrom(r),
	})
	if err != nil {
		h.respondCommandError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, changed[0])
}

type cancelPayload struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	var payload cancelPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	changed, err := h.service.Dispatch(r.Context(), CancelCommand{
		ID:     chi.URLParam(r, "id"),
		Reason: payload.Reason,
		Actor:  actorFrom(r),
	})
	if err != nil {
		h.respondCommandError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, changed[0])
}

func (h *Handler) PreviewImport(w http.ResponseWriter, r *http.Request) {
	text, ok := h.readImportText(w, r)
	if !ok {
		return
	}
	result, err := h.service.PreviewImport(r.Context(), text)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Import Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) CommitImport(w http.ResponseWriter, r *http.Request) {
	text, ok := h.readImportText(w, r)
	if !ok {
		return
	}
	created, rowErrors, err := h.service.CommitImport(r.Context(), text, actorFrom(r))
	if err != nil {
		h.respondCommandError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"created": created,
		"errors":  rowErrors,
	})
}

func (h *Handler) PreviewDecisions(w http.ResponseWriter, r *http.Request) {
	sheet, ok := h.readDecisionSheet(w, r)
	if !ok {
		return
	}
	result, err := h.service.PreviewDecisions(sheet)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Import Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) CommitDecisions(w http.ResponseWriter, r *http.Request) {
	sheet, ok := h.readDecisionSheet(w, r)
	if !ok {
		return
	}
	changed, rowErrors, err := h.service.CommitDecisions(r.Context(), sheet, actorFrom(r))
	if err != nil {
		h.respondCommandError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"updated": changed,
		"errors":  rowErrors,
	})
}

func (h *Handler) ExportPending(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ExportPending(r.Context())
	if err != nil {
		h.logger.Error("export pending decisions", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="pendentes_analise_`+h.service.now().Format(DateLayout)+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// readImportText reads the CSV body, honoring a windows-1252 charset
// declaration and stripping a UTF-8 BOM. Exported spreadsheets from
// Brazilian Excel installs commonly arrive in both shapes.
func (h *Handler) readImportText(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, h.maxBytes))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Import Failed", "could not read request body")
		return "", false
	}
	if _, params, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil {
		cs := strings.ToLower(params["charset"])
		if cs == "windows-1252" || cs == "iso-8859-1" {
			decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), raw)
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Import Failed", "could not decode file encoding")
				return "", false
			}
			raw = decoded
		}
	}
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	return string(raw), true
}

func (h *Handler) readDecisionSheet(w http.ResponseWriter, r *http.Request) (tabular.Sheet, bool) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, h.maxBytes))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Import Failed", "could not read request body")
		return tabular.Sheet{}, false
	}
	sheet, err := tabular.ReadFirstSheet(raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Import Failed", err.Error())
		return tabular.Sheet{}, false
	}
	return sheet, true
}

func (h *Handler) respondCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInvalidState):
		httpx.Problem(w, http.StatusConflict, "Invalid State", err.Error())
	default:
		h.logger.Error("command failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func actorFrom(r *http.Request) Actor {
	actor, _ := rbac.ActorFromContext(r.Context())
	return Actor{ID: actor.ID, Name: actor.Name, Role: actor.Role}
}
