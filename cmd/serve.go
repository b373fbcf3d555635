package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rpupo63/portfolio-backend/api"
	"github.com/rpupo63/portfolio-backend/auth"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/media"
	"github.com/rpupo63/portfolio-backend/services"
)

const sessionPurgeInterval = 15 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := settings.ValidateServe(); err != nil {
		return err
	}

	db, err := database.Open(ctx, settings)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if settings.AdminBootstrap {
		if _, err := services.EnsureDefaultAdmin(ctx, db.AdminRepo()); err != nil {
			return err
		}
	}

	store, err := media.New(ctx, settings)
	if err != nil {
		return fmt.Errorf("init media store: %w", err)
	}

	var sessions auth.Store
	switch settings.SessionStore {
	case "memory":
		sessions = auth.NewMemoryStore()
	default:
		repo := db.SessionRepo()
		sessions = repo
		go purgeSessions(ctx, repo)
	}

	server, err := api.NewServer(api.Dependencies{
		Database: db,
		Sessions: sessions,
		Media:    store,
	}, settings)
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	errChannel := make(chan error, 1)
	go server.Start(errChannel)

	select {
	case err := <-errChannel:
		log.Error().Err(err).Msg("Server stopped")
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	}
	server.ShutdownGracefully(30 * time.Second)
	return nil
}

// purgeSessions deletes expired database sessions until ctx is cancelled.
func purgeSessions(ctx context.Context, repo *database.SessionRepo) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("Failed to purge expired sessions")
				continue
			}
			if n > 0 {
				log.Debug().Int64("sessions", n).Msg("Purged expired sessions")
			}
		}
	}
}
