package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orbitlab/rocketminer/internal/config"
	"github.com/orbitlab/rocketminer/internal/store"
)

func (a *app) newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the catalog schema",
		Long: `Apply pending schema migrations to the configured SQLite or PostgreSQL
database. Running it again on an up-to-date database is a no-op.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			b, err := openSQL(ctx, a.cfg.Store)
			if err != nil {
				return err
			}
			defer b.close()

			version, err := b.migrate(ctx)
			if err != nil {
				return err
			}
			a.logger.Info("schema migrated", "driver", a.cfg.Store.Driver, "version", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}

func (a *app) newSeedCommand() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a catalog file into the configured backend",
		Long: `Read a YAML or JSON catalog and append its rows to the configured SQLite,
PostgreSQL or Redis backend. SQL schemas are migrated first. The whole
catalog is validated before anything is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			c, err := store.ReadCatalog(from)
			if err != nil {
				return err
			}

			var target seeder
			switch a.cfg.Store.Driver {
			case config.DriverSQLite, config.DriverPostgres:
				b, err := openSQL(ctx, a.cfg.Store)
				if err != nil {
					return err
				}
				defer b.close()
				if _, err := b.migrate(ctx); err != nil {
					return err
				}
				target = b
			case config.DriverRedis:
				st, err := store.ConnectRedis(ctx, a.cfg.Store.RedisURL, redisPrefix(a.cfg.Store))
				if err != nil {
					return err
				}
				defer func() { _ = st.Close() }()
				target = st
			default:
				return fmt.Errorf("%w: seed needs sqlite, postgres or redis, got %s", errWriteUnsupported, a.cfg.Store.Driver)
			}

			if err := target.Seed(ctx, c); err != nil {
				return err
			}
			a.logger.Info("catalog seeded",
				"driver", a.cfg.Store.Driver,
				"providers", len(c.Providers),
				"rockets", len(c.Rockets),
				"launches", len(c.Launches),
			)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d providers, %d rockets, %d launches\n",
				len(c.Providers), len(c.Rockets), len(c.Launches))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "catalog file to load")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}
