// Package cmd holds the command line interface: serve, setup-admin and export.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rpupo63/portfolio-backend/config"
)

var (
	settings config.Settings
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Portfolio site and admin backend",
	Long: `portfolio serves a personal portfolio site together with the admin panel used to
manage its skills and projects, and can export the site as a static page.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupCommand,
}

// Execute runs the command tree with a context cancelled on SIGINT or SIGTERM.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Command failed")
		cancel()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(setupAdminCmd)
	rootCmd.AddCommand(exportCmd)
}

func setupCommand(cmd *cobra.Command, _ []string) error {
	s, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if logLevel != "" {
		s.LogLevel = logLevel
	}
	setupLogging(s.LogLevel, s.LogFormat)
	settings = s
	return nil
}
