package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/media"
	"github.com/rpupo63/portfolio-backend/services"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the public page to a static HTML file",
	Long: `export renders the public portfolio page with the current active skills and
projects and writes it to a single HTML file for a static host. Run it again after
every content change.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		db, err := database.Open(ctx, settings)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		store, err := media.New(ctx, settings)
		if err != nil {
			return fmt.Errorf("init media store: %w", err)
		}
		imageURL := store.URL
		if _, ok := store.(*media.LocalStore); ok {
			// the static page sits next to the uploads directory
			imageURL = func(p string) string { return p }
		}
		renderer, err := services.NewPageRenderer(imageURL)
		if err != nil {
			return err
		}

		res, err := services.ExportStatic(ctx, db.SkillRepo(), db.ProjectRepo(), renderer, exportOut)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes): %d skills, %d projects\n",
			res.Path, res.Bytes, res.Skills, res.Projects)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "index.html", "output file")
}
