package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/kristinefung/personal-website-sub000/internal/api/auth"
	"github.com/kristinefung/personal-website-sub000/internal/api/enquiry"
	"github.com/kristinefung/personal-website-sub000/internal/api/image"
	"github.com/kristinefung/personal-website-sub000/internal/api/journey"
	"github.com/kristinefung/personal-website-sub000/internal/api/profile"
	"github.com/kristinefung/personal-website-sub000/internal/api/project"
	"github.com/kristinefung/personal-website-sub000/internal/api/technology"
)

// Config contains dependencies needed for the router setup.
type Config struct {
	AuthHandler       *auth.AuthHandler
	ProfileHandler    *profile.ProfileHandler
	ProjectHandler    *project.ProjectHandler
	JourneyHandler    *journey.JourneyHandler
	TechnologyHandler *technology.TechnologyHandler
	EnquiryHandler    *enquiry.EnquiryHandler
	ImageHandler      *image.ImageHandler

	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are applied
// before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Public routes: marketing reads, contact form, login, images.
		r.Group(func(r chi.Router) {
			r.Post("/auth/login", cfg.AuthHandler.Login)

			r.Get("/profiles", cfg.ProfileHandler.GetAll)
			r.Get("/profiles/{id}", cfg.ProfileHandler.GetByID)

			r.Get("/projects", cfg.ProjectHandler.GetAll)
			r.Get("/projects/{id}", cfg.ProjectHandler.GetByID)

			r.Get("/journeys", cfg.JourneyHandler.GetAll)
			r.Get("/journeys/{id}", cfg.JourneyHandler.GetByID)

			r.Get("/technologies", cfg.TechnologyHandler.GetAll)

			r.Post("/enquiries", cfg.EnquiryHandler.Create)

			r.Get("/images/*", cfg.ImageHandler.Serve)
		})

		// Protected routes: session management and all admin mutations.
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/auth/logout", cfg.AuthHandler.Logout)
			r.Post("/auth/logout-all", cfg.AuthHandler.LogoutAll)
			r.Get("/auth/me", cfg.AuthHandler.Me)

			r.Post("/profiles", cfg.ProfileHandler.Create)
			r.Patch("/profiles/{id}", cfg.ProfileHandler.Update)
			r.Delete("/profiles/{id}", cfg.ProfileHandler.Delete)

			r.Post("/projects", cfg.ProjectHandler.Create)
			r.Patch("/projects/{id}", cfg.ProjectHandler.Update)
			r.Delete("/projects/{id}", cfg.ProjectHandler.Delete)

			r.Post("/journeys", cfg.JourneyHandler.Create)
			r.Patch("/journeys/{id}", cfg.JourneyHandler.Update)
			r.Delete("/journeys/{id}", cfg.JourneyHandler.Delete)

			r.Post("/technologies", cfg.TechnologyHandler.Create)
			r.Patch("/technologies/{id}", cfg.TechnologyHandler.Update)
			r.Delete("/technologies/{id}", cfg.TechnologyHandler.Delete)

			r.Get("/enquiries", cfg.EnquiryHandler.GetAll)
			r.Get("/enquiries/{id}", cfg.EnquiryHandler.GetByID)
			r.Delete("/enquiries/{id}", cfg.EnquiryHandler.Delete)

			r.Post("/images/upload", cfg.ImageHandler.Upload)
		})
	})

	return r
}
