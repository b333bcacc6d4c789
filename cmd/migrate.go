package main

import (
	"github.com/spf13/cobra"

	"github.com/dogoodogoo/etl-cli/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	Long:  "Creates the PostGIS extension, the destination tables, and their spatial indexes. Safe to run repeatedly.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		pool, err := db.New(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
		if err != nil {
			return err
		}
		defer pool.Close()

		return db.Migrate(ctx, pool)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
