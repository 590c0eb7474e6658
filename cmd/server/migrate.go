package main

import (
	"github.com/spf13/cobra"

	"messaging/internal/database"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the channel, member and message tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()
			return database.Migrate(db, log)
		},
	}
}
