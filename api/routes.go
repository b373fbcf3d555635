package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/errs"
)

// setupPageRoutes serves the public page, the admin UI and uploaded images.
func setupPageRoutes(r chi.Router, handlers *routeHandlers, uploadRoot string) {
	r.Get("/", handlers.dashboardHandler.publicPage())
	r.Get("/admin", handlers.dashboardHandler.dashboard())
	r.Get("/admin/login", handlers.dashboardHandler.loginPage())
	r.Get("/admin/logout", handlers.authHandler.logoutRedirect())
	r.Handle("/admin/assets/*", assetsHandler())
	if uploadRoot != "" {
		r.Handle("/uploads/*", uploadsHandler(uploadRoot))
	}
}

// setupFallbacks answers unknown paths and verbs with the JSON envelope.
func setupFallbacks(r chi.Router) {
	responder := NewResponder(log.With().Str("handlerName", "router").Logger())
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		responder.WriteError(w, errs.NewMethodNotAllowedError())
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		responder.WriteError(w, errs.NewNotFoundError("Not found"))
	})
}

// setupAPIRoutes mounts the JSON API. Reads are public; every write needs a session and,
// when enabled, a CSRF token.
func setupAPIRoutes(r chi.Router, handlers *routeHandlers, m authMiddleware, maxBodyBytes int64) {
	r.Route("/api", func(r chi.Router) {
		r.Use(limitBody(maxBodyBytes))

		r.Post("/auth/login", handlers.authHandler.login())
		r.Get("/auth/session", handlers.authHandler.session())

		r.Get("/skills", handlers.skillHandler.getSkills())
		r.Get("/projects", handlers.projectHandler.getProjects())

		r.Group(func(r chi.Router) {
			r.Use(m.requireAdmin)
			r.Use(m.verifyCSRF)

			r.Post("/auth/logout", handlers.authHandler.logout())

			r.Post("/skills", handlers.skillHandler.postSkill())
			r.Put("/skills", handlers.skillHandler.patchSkill())
			r.Patch("/skills", handlers.skillHandler.patchSkill())
			r.Delete("/skills", handlers.skillHandler.deleteSkill())

			r.Post("/projects", handlers.projectHandler.postProject())
			r.Put("/projects", handlers.projectHandler.patchProject())
			r.Patch("/projects", handlers.projectHandler.patchProject())
			r.Delete("/projects", handlers.projectHandler.deleteProject())

			r.Put("/settings", handlers.settingsHandler.updateAccount())
		})
	})
}
