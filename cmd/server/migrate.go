package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/euii-ii/ContentCapsule/internal/config"
	"github.com/euii-ii/ContentCapsule/internal/database"
	"github.com/euii-ii/ContentCapsule/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := logger.New(config.LoadLogMode())
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer log.Sync()

		db := database.NewPostgres(config.LoadDatabaseURL())
		defer db.Close()

		pool, err := db.Pool(cmd.Context())
		if err != nil {
			log.Error("✗ PostgreSQL connection failed", "error", err)
			return err
		}
		if err := database.RunMigrations(cmd.Context(), pool, database.Migrations, "migrations"); err != nil {
			log.Error("✗ Database migration failed", "error", err)
			return err
		}
		log.Info("✓ Database migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
