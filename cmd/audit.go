package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/frahmantamala/labtrack/internal/app"
	"github.com/frahmantamala/labtrack/internal/audit"
	"github.com/frahmantamala/labtrack/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var (
	auditEntity   string
	auditEntityID int64
	auditLimit    uint64
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Print recent audit trail entries",
	Long:  `Print the newest audit_logs rows as JSON lines, optionally narrowed to one entity type or entity.`,
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
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		recorder := audit.NewRecorder(sqlx.NewDb(sqlDB, app.SQLDriverName(cfg.Database.Driver)), lg)
		rows, err := recorder.Recent(context.Background(), audit.Filter{
			EntityType: auditEntity,
			EntityID:   auditEntityID,
			Limit:      auditLimit,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, row := range rows {
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditEntity, "entity", "", "entity type: User, Asset, Ticket or Comment")
	auditCmd.Flags().Int64Var(&auditEntityID, "id", 0, "entity id")
	auditCmd.Flags().Uint64Var(&auditLimit, "limit", 50, "maximum number of entries")
}
