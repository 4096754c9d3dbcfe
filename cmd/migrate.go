package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wednesdayfs/helpdesk/internal/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return app.Migrate(cmd.Context(), configPath)
	},
}
