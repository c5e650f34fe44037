package rbac

import (
	"context"
	"net/http"
	"strconv"

	"github.com/promoflow/promoflow/internal/platform/httpx"
)

// ActorHeader carries the acting user's id, resolved by the caller's
// presentation layer. Authentication itself is out of scope.
const ActorHeader = "X-Actor-ID"

type contextKey struct{}

// ActorSource resolves an actor id to its current role and overrides.
type ActorSource interface {
	Actor(ctx context.Context, id int64) (Actor, error)
}

// WithActor stores the actor in the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, actor)
}

// ActorFromContext returns the actor placed by RequireActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(contextKey{}).(Actor)
	return actor, ok
}

// RequireActor resolves the X-Actor-ID header into an Actor and stores
// it in the request context. Requests without a resolvable actor are
// rejected.
func RequireActor(src ActorSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(r.Header.Get(ActorHeader), 10, 64)
			if err != nil || id <= 0 {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing or malformed "+ActorHeader+" header")
				return
			}
			actor, err := src.Actor(r.Context(), id)
			if err != nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "unknown actor")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequirePermission gates a route on a capability. The actor must have
// been resolved by RequireActor earlier in the chain.
func RequirePermission(perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no actor in context")
				return
			}
			if !HasPermission(actor, perm) {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", string(perm)+" required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
