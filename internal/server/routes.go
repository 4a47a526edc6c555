package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/scribe/scribe/internal/handler"
	"github.com/scribe/scribe/internal/metrics"
	"github.com/scribe/scribe/internal/middleware"
)

// RouterDeps holds everything the router wires together.
type RouterDeps struct {
	Auth     *handler.AuthHandler
	Posts    *handler.PostHandler
	Health   *handler.HealthHandler
	Metrics  *handler.MetricsHandler
	Resolver middleware.CallerResolver
	Recorder metrics.Recorder
	Logger   *slog.Logger

	CORS          middleware.CORSConfig
	IsDevelopment bool
	MaxBodySize   int64
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	recorder := deps.Recorder
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Metrics(recorder))
	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.Security(deps.IsDevelopment))
	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.MaxBodySize(deps.MaxBodySize))

	// Probes and metrics (no auth required)
	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	if deps.Metrics != nil {
		r.Get("/metrics", deps.Metrics.Metrics)
	}

	requireAuth := middleware.Auth(deps.Resolver, deps.Logger)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", deps.Auth.Register)
		r.Post("/login", deps.Auth.Login)
		r.With(requireAuth).Get("/me", deps.Auth.Me)
	})

	// Reads are public; mutations resolve the caller from the bearer token.
	r.Route("/blog/posts", func(r chi.Router) {
		r.Get("/", deps.Posts.List)
		r.Get("/{id}", deps.Posts.Get)
		r.With(requireAuth).Post("/", deps.Posts.Create)
		r.With(requireAuth).Put("/{id}", deps.Posts.Update)
		r.With(requireAuth).Delete("/{id}", deps.Posts.Delete)
	})

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}
