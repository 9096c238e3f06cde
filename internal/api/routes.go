package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/leads", func(r chi.Router) {
			r.Get("/", h.ListLeads)
			r.Post("/", h.CreateLead)
			r.Post("/upload-csv", h.UploadCSV)
			r.Get("/upload-status/{sessionID}", h.UploadStatus)
			r.Post("/batch-delete", h.BatchDeleteLeads)

			r.Route("/{leadID}", func(r chi.Router) {
				r.Get("/", h.GetLead)
				r.Put("/", h.UpdateLead)
				r.Delete("/", h.DeleteLead)
				r.Get("/explain", h.ExplainLead)
			})
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", h.ListCampaigns)
			r.Post("/", h.CreateCampaign)
			r.Route("/{campaignID}", func(r chi.Router) {
				r.Get("/", h.GetCampaign)
				r.Put("/", h.UpdateCampaign)
				r.Delete("/", h.DeleteCampaign)
				r.Post("/status", h.TransitionCampaign)
				r.Post("/leads", h.AssignCampaignLeads)
			})
		})

		r.Get("/dashboard", h.GetDashboard)
		r.Get("/meta/vocabularies", h.GetVocabularies)
	})

	return r
}
