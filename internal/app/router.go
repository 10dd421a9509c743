package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gatehouse-iam/gatehouse/internal/access"
	"github.com/gatehouse-iam/gatehouse/internal/auth"
	"github.com/gatehouse-iam/gatehouse/internal/groups"
	"github.com/gatehouse-iam/gatehouse/internal/modules"
	"github.com/gatehouse-iam/gatehouse/internal/observability"
	"github.com/gatehouse-iam/gatehouse/internal/permissions"
	"github.com/gatehouse-iam/gatehouse/internal/roles"
	"github.com/gatehouse-iam/gatehouse/internal/token"
	"github.com/gatehouse-iam/gatehouse/internal/users"
	"github.com/gatehouse-iam/gatehouse/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Metrics            *observability.Metrics
	TokenMiddleware    token.Middleware
	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	GroupsHandler      *groups.Handler
	RolesHandler       *roles.Handler
	ModulesHandler     *modules.Handler
	PermissionsHandler *permissions.Handler
	AccessHandler      *access.Handler
	JobsHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router with Gatehouse defaults. Everything
// under /api except the auth entry points sits behind bearer token
// verification.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			params.AuthHandler.MountPublicRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(params.TokenMiddleware.RequireAuth)
				params.AuthHandler.MountRoutes(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(params.TokenMiddleware.RequireAuth)

			r.Route("/users", params.UsersHandler.MountRoutes)
			r.Route("/groups", params.GroupsHandler.MountRoutes)
			r.Route("/roles", params.RolesHandler.MountRoutes)
			r.Route("/modules", params.ModulesHandler.MountRoutes)
			r.Route("/permissions", params.PermissionsHandler.MountRoutes)
			r.Route("/access", params.AccessHandler.MountRoutes)
			if params.JobsHandler != nil {
				r.Route("/jobs", params.JobsHandler.MountRoutes)
			}
		})
	})

	return r
}
