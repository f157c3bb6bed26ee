package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/labtrack/internal/seed"
	"github.com/frahmantamala/labtrack/pkg/logger"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed an empty database with demo users, assets and tickets. Does nothing once any user exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		lg := logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

		db, err := initDB(cfg.Database, lg)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		seeded, err := seed.NewSeeder(db, cfg.Security.BCryptCost, lg).Run(context.Background())
		if err != nil {
			return err
		}
		if seeded {
			cmd.Println("Seeded users admin, engineer and technician with sample assets and tickets")
		} else {
			cmd.Println("Users already exist; nothing seeded")
		}
		return nil
	},
}
