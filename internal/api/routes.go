package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the router.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://dnbdoctor.com", "http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/subscribers", func(r chi.Router) {
			r.Get("/", h.ListSubscribers)
			r.Post("/", h.CreateSubscriber)
			r.Put("/{id}", h.UpdateSubscriber)
			r.Delete("/{id}", h.DeleteSubscriber)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Post("/", h.CreateCategory)
			r.Delete("/{id}", h.DeleteCategory)
		})

		r.Route("/newsletter", func(r chi.Router) {
			r.Get("/templates", h.ListTemplates)
			r.Post("/send", h.SendNewsletter)
		})

		// Public subscribe form endpoint.
		r.Post("/subscribe", h.PublicSubscribe)

		if h.content != nil {
			r.Get("/releases", h.ListReleases)
			r.Post("/releases", h.CreateRelease)
			r.Get("/artists", h.ListArtists)
			r.Post("/artists", h.CreateArtist)
			r.Get("/news", h.ListNews)
			r.Post("/news", h.CreateNews)
		}
		if h.importer != nil {
			r.Post("/news/import-feed", h.ImportNewsFeed)
		}
	})

	return r
}
