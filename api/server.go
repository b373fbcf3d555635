package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/auth"
	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/media"
	"github.com/rpupo63/portfolio-backend/services"
)

// Dependencies are the long lived components the HTTP layer is built on.
type Dependencies struct {
	Database database.Database
	Sessions auth.Store
	Media    media.Store
	Pages    *services.PageRenderer
}

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(deps Dependencies, settings config.Settings) (Server, error) {
	startupTime := time.Now()

	router, err := newRouter(deps, settings)
	if err != nil {
		return Server{}, err
	}

	server := &http.Server{
		Addr:         settings.Addr(),
		Handler:      router,
		ReadTimeout:  settings.ReadTimeout,
		WriteTimeout: settings.WriteTimeout,
		IdleTimeout:  settings.IdleTimeout,
	}

	return Server{server, startupTime}, nil
}

func newRouter(deps Dependencies, settings config.Settings) (*chi.Mux, error) {
	if deps.Pages == nil {
		pages, err := services.NewPageRenderer(deps.Media.URL)
		if err != nil {
			return nil, fmt.Errorf("parse page template: %w", err)
		}
		deps.Pages = pages
	}

	var csrf *auth.CSRF
	if settings.CSRFEnabled {
		csrf = auth.NewCSRF(settings.CSRFSecret, settings.SessionTTL)
	}
	authenticator := auth.NewAuthenticator(deps.Database.AdminRepo(), deps.Sessions, settings.SessionTTL)
	m := newAuthMiddleware(authenticator, csrf)
	handlers := initializeHandlers(deps.Database, authenticator, m, deps.Media, deps.Pages, settings.SecureCookies)

	chiRouter := chi.NewRouter()
	chiRouter.Use(RecoverPanics)
	chiRouter.Use(chimw.RealIP)
	if len(settings.AcceptedOrigins) > 0 {
		chiRouter.Use(corsMiddleware(settings.AcceptedOrigins))
	}
	if settings.LogFormat == "json" {
		chiRouter.Use(httpLogger(log.Logger))
	} else {
		chiRouter.Use(ColoredHTTPLoggingMiddleware)
	}
	chiRouter.Use(chimw.GetHead)
	chiRouter.Use(m.loadSession)

	var uploadRoot string
	if local, ok := deps.Media.(*media.LocalStore); ok {
		uploadRoot = local.Root()
	}
	setupFallbacks(chiRouter)
	setupPageRoutes(chiRouter, handlers, uploadRoot)
	setupAPIRoutes(chiRouter, handlers, m, settings.MaxUploadBytes+1<<20)

	return chiRouter, nil
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Dur("uptime", time.Since(s.startupTime)).Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
