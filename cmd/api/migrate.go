package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB(db, log)

		log.Info().Msg("migrations applied")
		return nil
	},
}
