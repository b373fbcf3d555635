package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/services"
)

var setupAdminCmd = &cobra.Command{
	Use:   "setup-admin",
	Short: "Create the default admin account if none exists",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		db, err := database.Open(ctx, settings)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		created, err := services.EnsureDefaultAdmin(ctx, db.AdminRepo())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !created {
			fmt.Fprintln(out, "An admin account already exists; nothing to do.")
			return nil
		}
		fmt.Fprintf(out, "Created admin %q with password %q. Change it from the dashboard settings.\n",
			services.DefaultAdminUsername, services.DefaultAdminPassword)
		return nil
	},
}
