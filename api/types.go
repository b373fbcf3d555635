package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	authHandler      authHandler
	skillHandler     skillHandler
	projectHandler   projectHandler
	settingsHandler  settingsHandler
	dashboardHandler dashboardHandler
}
