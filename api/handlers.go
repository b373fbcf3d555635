package api

import (
	"github.com/rpupo63/portfolio-backend/auth"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/media"
	"github.com/rpupo63/portfolio-backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, authenticator *auth.Authenticator, m authMiddleware, store media.Store, pages *services.PageRenderer, secureCookies bool) *routeHandlers {
	return &routeHandlers{
		authHandler:      newAuthHandler(authenticator, m, secureCookies),
		skillHandler:     newSkillHandler(db.SkillRepo()),
		projectHandler:   newProjectHandler(db.ProjectRepo(), store),
		settingsHandler:  newSettingsHandler(db.AdminRepo(), authenticator),
		dashboardHandler: newDashboardHandler(db, pages, store, m),
	}
}
