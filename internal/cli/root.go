// Package cli provides the rocketminer command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/orbitlab/rocketminer/internal/config"
)

// Version is set at build time.
var Version = "0.1.0"

// app carries state shared by every subcommand of one root command.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "rocketminer",
		Short: "Ranking queries over a space launch catalog",
		Long: `rocketminer answers ranking questions about rockets, launches and launch
service providers: most launched rockets, most reliable providers, dominant
countries per orbit, highest revenue per year and more.

The catalog is read from a YAML file, SQLite, PostgreSQL or Redis.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}

			cfg, err := config.Load(a.cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.logger = logger
			slog.SetDefault(logger)
			if cfg.File != "" {
				logger.Debug("using config file", "path", cfg.File)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ./rocketminer.yaml)")
	pf.String("driver", "", "record store driver (memory|file|sqlite|postgres|redis)")
	pf.String("path", "", "catalog file or SQLite database path")
	pf.String("dsn", "", "PostgreSQL connection string")
	pf.String("redis-url", "", "Redis URL")
	pf.String("redis-prefix", "", "Redis key prefix")
	pf.String("log-level", "", "log level (debug|info|warn|error)")
	pf.String("log-format", "", "log format (json|text)")
	pf.StringP("output", "o", "", "output format (table|json|markdown|csv)")
	pf.String("metrics-textfile", "", "write query metrics to this file after each command")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.OutputTable, config.OutputJSON, config.OutputMarkdown, config.OutputCSV}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("driver", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.DriverMemory, config.DriverFile, config.DriverSQLite, config.DriverPostgres, config.DriverRedis}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newVersionCommand(Version))
	rootCmd.AddCommand(a.queryCommands()...)
	rootCmd.AddCommand(a.newMigrateCommand())
	rootCmd.AddCommand(a.newSeedCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func newLogger(w io.Writer, lc config.LogConfig) (*slog.Logger, error) {
	level, err := lc.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the rocketminer version.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "rocketminer v%s\n", version)
		},
	}
}
