package main

import (
	"errors"

	pg "pawpals/internal/adapters/storage/postgres"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema (idempotent)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer syncLogger(log)

		if cfg.Database.DSN == "" {
			return errors.New("DB_DSN is required")
		}
		db, err := pg.Open(cfg.Database.DSN, poolConfig(cfg.Database))
		if err != nil {
			return err
		}
		defer db.Close()

		if err := pg.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		log.Info("schema applied", nil)
		return nil
	},
}
