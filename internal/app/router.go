package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/promoflow/promoflow/internal/analytics"
	"github.com/promoflow/promoflow/internal/masterdata/skufamilies"
	"github.com/promoflow/promoflow/internal/masterdata/storegroups"
	"github.com/promoflow/promoflow/internal/promo"
	"github.com/promoflow/promoflow/internal/rbac"
	"github.com/promoflow/promoflow/internal/rules"
	"github.com/promoflow/promoflow/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	ActorSource       rbac.ActorSource
	PromoHandler      *promo.Handler
	UsersHandler      *users.Handler
	RulesHandler      *rules.Handler
	StoreGroupHandler *storegroups.Handler
	SKUFamilyHandler  *skufamilies.Handler
	AnalyticsHandler  *analytics.Handler
}

// NewRouter constructs the chi.Router with PromoFlow defaults. Every
// API route past /healthz requires a resolvable X-Actor-ID header.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rbac.RequireActor(params.ActorSource))

		r.Group(params.PromoHandler.Routes)
		r.Route("/users", params.UsersHandler.Routes)
		r.Route("/rules", params.RulesHandler.Routes)
		r.Route("/store-groups", params.StoreGroupHandler.Routes)
		r.Route("/sku-families", params.SKUFamilyHandler.Routes)
		r.Route("/analytics", params.AnalyticsHandler.Routes)
	})

	return r
}
