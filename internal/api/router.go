// Package api wires the HTTP surface: routing, middleware, and handlers.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"parsaban/internal/api/handlers"
	apimiddleware "parsaban/internal/api/middleware"
	"parsaban/internal/config"
	"parsaban/internal/infrastructure/cache"
	"parsaban/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	cache    *cache.Redis
	logger   *logger.Logger
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, h *handlers.Handlers, c *cache.Redis, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		cache:    c,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	if r.config.RateLimit.Enabled && r.cache != nil {
		router.Use(apimiddleware.RateLimiter(r.cache, r.config.RateLimit))
	}

	router.Get("/health", r.handlers.Health.Check)
	router.Get("/ready", r.handlers.Health.Ready)

	router.Route("/api/v1", func(api chi.Router) {
		// Synchronous classification
		api.Post("/url/check", r.handlers.Scan.CheckURL)
		api.Post("/sms/analyze", r.handlers.Scan.AnalyzeSMS)
		api.Post("/app/analyze", r.handlers.Scan.AnalyzeApp)

		// Asynchronous signal intake (throttled, ordered)
		api.Post("/signals", r.handlers.Signals.Submit)

		// Signature refresh lifecycle
		api.Route("/update", func(u chi.Router) {
			u.Post("/", r.handlers.Update.Trigger)
			u.Get("/state", r.handlers.Update.State)
			u.Get("/history", r.handlers.Update.History)
		})

		// Counters and tips
		api.Get("/stats", r.handlers.Stats.Get)
		api.Route("/tips", func(t chi.Router) {
			t.Get("/", r.handlers.Tips.List)
			t.Get("/random", r.handlers.Tips.Random)
		})
	})

	return router
}
