// Command migrate manages the Data Hub database schema.
package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/datahub/backend/internal/infrastructure/config"
	"github.com/datahub/backend/internal/infrastructure/logger"
	"github.com/datahub/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type cli struct {
	migrationsPath string
	logLevel       string
	log            *zap.Logger
}

func main() {
	c := &cli{}
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Data Hub database migration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync(c.log)
		},
	}
	root.PersistentFlags().StringVar(&c.migrationsPath, "path", "", "Path to migrations directory (default: nearest ./migrations)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withMigrator((*migration.Migrator).Up)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withMigrator((*migration.Migrator).Down)
			},
		},
		&cobra.Command{
			Use:   "step <n>",
			Short: "Apply n migrations (negative rolls back)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				return c.withMigrator(func(m *migration.Migrator) error { return m.Steps(n) })
			},
		},
		&cobra.Command{
			Use:   "goto <version>",
			Short: "Migrate to a specific version",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return c.withMigrator(func(m *migration.Migrator) error { return m.GoTo(uint(version)) })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show the applied migration version and pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withMigrator(func(m *migration.Migrator) error {
					version, dirty, err := m.Version()
					if err != nil {
						return err
					}
					pending, err := m.Pending()
					if err != nil {
						return err
					}
					c.log.Info("Current migration version",
						zap.Uint("version", version),
						zap.Bool("dirty", dirty),
						zap.Strings("pending", pending),
					)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the migration version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return c.withMigrator(func(m *migration.Migrator) error { return m.Force(version) })
			},
		},
		c.dropCommand(),
		&cobra.Command{
			Use:   "create <name> [description]",
			Short: "Create a new migration file pair",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				description := ""
				if len(args) > 1 {
					description = args[1]
				}
				mf, err := migration.CreateMigration(c.migrationsPath, args[0], description)
				if err != nil {
					return err
				}
				c.log.Info("Migration created",
					zap.String("version", mf.Version),
					zap.String("up_file", mf.UpPath),
					zap.String("down_file", mf.DownPath),
				)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List available migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				migrations, err := migration.ListMigrations(c.migrationsPath)
				if err != nil {
					return err
				}
				for _, m := range migrations {
					fmt.Fprintln(cmd.OutOrStdout(), m)
				}
				return nil
			},
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (c *cli) dropCommand() *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop all database objects",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("refusing to drop the database without --confirm")
			}
			return c.withMigrator((*migration.Migrator).Drop)
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm dropping every table")
	return cmd
}

func (c *cli) setup() error {
	log, err := logger.New(&logger.Config{
		Level:      c.logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.log = log

	if c.migrationsPath == "" {
		c.migrationsPath = migration.FindMigrationsPath()
	}
	if c.migrationsPath == "" {
		c.migrationsPath = "migrations"
	}
	abs, err := filepath.Abs(c.migrationsPath)
	if err != nil {
		return fmt.Errorf("failed to resolve migrations path: %w", err)
	}
	c.migrationsPath = abs
	return nil
}

func (c *cli) withMigrator(fn func(*migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	m, err := migration.New(db, c.migrationsPath, c.log)
	if err != nil {
		return err
	}
	defer m.Close()

	c.log.Info("Using migrations", zap.String("path", c.migrationsPath))
	return fn(m)
}
