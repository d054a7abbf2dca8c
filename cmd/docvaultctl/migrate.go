package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Behnamfe76/docvault/internal/config"
	"github.com/Behnamfe76/docvault/internal/observability"
	"github.com/Behnamfe76/docvault/internal/persistence"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply metadata store migrations",
		Long: `Apply the embedded SQL migrations to the metadata store selected by
METADATA_DRIVER (postgres uses POSTGRES_DSN, sqlite uses SQLITE_PATH).
Migrations are idempotent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			metaCfg, err := config.LoadSection[config.MetadataConfig]()
			if err != nil {
				return err
			}
			logCfg, err := config.LoadSection[config.LoggerConfig]()
			if err != nil {
				return err
			}
			logger, err := observability.NewLogger(logCfg)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx := cmd.Context()
			switch metaCfg.Driver {
			case config.DriverSQLite:
				store, err := persistence.OpenSQLite(ctx, metaCfg.SQLitePath, logger)
				if err != nil {
					return err
				}
				return store.Close()
			case config.DriverPostgres:
				pgCfg, err := config.LoadSection[config.PostgresConfig]()
				if err != nil {
					return err
				}
				pgCfg.RunMigrations = true
				pg, err := persistence.NewPostgres(ctx, pgCfg, logger)
				if err != nil {
					return err
				}
				pg.Close()
				logger.Info("postgres migrations complete", zap.String("driver", metaCfg.Driver))
				return nil
			default:
				return fmt.Errorf("unsupported metadata driver %q", metaCfg.Driver)
			}
		},
	}
}
