package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/acharya-api/internal/api"
	apiMiddleware "github.com/phrazzld/acharya-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
// It accepts the application dependencies to create handlers and register routes.
// Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware) // Add trace IDs for improved error handling

	// Create API handlers using the application's services
	jobHandler := api.NewJobHandler(app.orchestrator, app.jobRegistry, app.logger)
	mediaHandler := api.NewMediaHandler(
		app.config.Media.PodcastDir,
		app.config.Media.ImageDir,
		app.logger,
	)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Generation is expensive; rate-limit it per client IP.
		r.Group(func(r chi.Router) {
			r.Use(apiMiddleware.RateLimit(
				app.config.Server.RateLimitRPS,
				app.config.Server.RateLimitBurst,
			))
			r.Post("/generate", jobHandler.Generate)
		})

		// Polling endpoints
		r.Get("/status/{sessionID}", jobHandler.Status)
		r.Get("/progress/{sessionID}", jobHandler.Progress)

		// Generated media
		r.Get("/podcast/{filename}", mediaHandler.Podcast)
		r.Get("/images/{filename}", mediaHandler.Image)
	})

	// Health check endpoints
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"service":"acharya-api","status":"running"}`)); err != nil {
			app.logger.Error("Failed to write root response", "error", err)
		}
	})

	return r
}
