package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/fleetdesk/fleetdesk/internal/articles"
	"github.com/fleetdesk/fleetdesk/internal/auth"
	"github.com/fleetdesk/fleetdesk/internal/bookings"
	"github.com/fleetdesk/fleetdesk/internal/fleet"
	"github.com/fleetdesk/fleetdesk/internal/observability"
	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
	"github.com/fleetdesk/fleetdesk/internal/realtime"
	"github.com/fleetdesk/fleetdesk/internal/reports"
	"github.com/fleetdesk/fleetdesk/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AuthService     *auth.Service
	AuthHandler     *auth.Handler
	UsersHandler    *users.Handler
	FleetHandler    *fleet.Handler
	BookingsHandler *bookings.Handler
	ReportsHandler  *reports.Handler
	RealtimeHandler *realtime.Handler
	ArticlesHandler *articles.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with fleetdesk defaults.
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
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	requirePrincipal := auth.RequirePrincipal(params.AuthService, params.Logger)

	r.Route("/auth", func(r chi.Router) {
		r.Use(RequestTimeout(params.Config))

		// Credential endpoints are rate limited per client IP.
		r.Group(func(r chi.Router) {
			r.Use(httprate.Limit(10, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "retry later")
				}),
			))
			params.AuthHandler.MountPublicRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(requirePrincipal)
			params.AuthHandler.MountProtectedRoutes(r)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(requirePrincipal)
		r.Use(RequestTimeout(params.Config))

		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/vehicles", params.FleetHandler.MountRoutes)
		r.Route("/bookings", params.BookingsHandler.MountRoutes)
		r.Route("/reports", params.ReportsHandler.MountRoutes)
		if params.ArticlesHandler != nil {
			r.Route("/articles", params.ArticlesHandler.MountRoutes)
		}
	})

	// The websocket route sits outside the request timeout so long-lived
	// connections are not cut off mid-stream.
	if params.RealtimeHandler != nil {
		r.Group(func(r chi.Router) {
			r.Use(requirePrincipal)
			r.Route("/ws", params.RealtimeHandler.MountRoutes)
		})
	}

	return r
}
