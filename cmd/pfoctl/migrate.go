package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/migration"
	"github.com/Tiedr/property-flow-organizer-sub000/migrations"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the PostgreSQL schema",
	Long: `Apply and inspect the SQL schema migrations.

Migrations are read from --path when given, otherwise from the copies
embedded in the binary. The database connection comes from the same
configuration as the server (config.toml, .env and PFO_DATABASE_*).`,
	Example: `  # Apply all pending migrations
  pfoctl migrate up

  # Roll back the last migration
  pfoctl migrate step -1

  # Create a new migration pair in ./migrations
  pfoctl migrate create add_payment_plans "Instalment plans per entry"`,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.PersistentFlags().String("path", "", "Migrations directory (default: embedded migrations)")

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(m *migration.Migrator, _ []string) error {
				return m.Up()
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(m *migration.Migrator, _ []string) error {
				return m.Down()
			}),
		},
		&cobra.Command{
			Use:   "step <n>",
			Short: "Apply n migrations (positive=up, negative=down)",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(m *migration.Migrator, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				return m.Steps(n)
			}),
		},
		&cobra.Command{
			Use:   "goto <version>",
			Short: "Migrate up or down to a specific version",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(m *migration.Migrator, args []string) error {
				v, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.GoTo(uint(v))
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show the current migration version",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(m *migration.Migrator, _ []string) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if v == 0 {
					fmt.Println("no migrations applied")
					return nil
				}
				fmt.Printf("version %d (dirty: %t)\n", v, dirty)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the migration version without running migrations",
			Long:  "Clears the dirty flag after a failed migration was repaired by hand.",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(m *migration.Migrator, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.Force(v)
			}),
		},
		&cobra.Command{
			Use:   "create <name> [description]",
			Short: "Create a new up/down migration pair",
			Args:  cobra.RangeArgs(1, 2),
			RunE:  runMigrateCreate,
		},
		&cobra.Command{
			Use:   "list",
			Short: "List available migrations",
			Args:  cobra.NoArgs,
			RunE:  runMigrateList,
		},
	)
}

// withMigrator opens the database and a Migrator around run
func withMigrator(run func(m *migration.Migrator, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.Driver != "postgres" {
			return fmt.Errorf("migrations target postgres, database.driver is %q", cfg.Database.Driver)
		}

		path, err := migrationsPath(cmd)
		if err != nil {
			return err
		}

		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(cmd.Context()); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}

		m, err := migration.New(db, path, log)
		if err != nil {
			return err
		}
		defer m.Close()

		log.Info("Running migration command",
			zap.String("command", cmd.Name()),
			zap.String("source", sourceName(path)),
		)
		return run(m, args)
	}
}

func runMigrateCreate(cmd *cobra.Command, args []string) error {
	path, err := migrationsPath(cmd)
	if err != nil {
		return err
	}
	if path == "" {
		path = "migrations"
	}
	description := ""
	if len(args) > 1 {
		description = args[1]
	}

	mf, err := migration.CreateMigration(path, args[0], description)
	if err != nil {
		return err
	}
	fmt.Printf("created %s\n        %s\n", mf.UpPath, mf.DownPath)
	return nil
}

func runMigrateList(cmd *cobra.Command, _ []string) error {
	path, err := migrationsPath(cmd)
	if err != nil {
		return err
	}
	var source fs.FS = migrations.FS
	if path != "" {
		source = os.DirFS(path)
	}

	names, err := migration.ListMigrations(source)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("no migrations found")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

// migrationsPath returns the absolute --path, or "" for the embedded set
func migrationsPath(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		return "", nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid migrations path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	return abs, nil
}

func sourceName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
