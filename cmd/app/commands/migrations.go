package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/karthikpoola6-cmd/email-triage-ai/migrations"
)

// RunMigrations applies all pending schema migrations for the configured
// driver. The migration files are embedded in the binary, so this works from
// any working directory. Returns nil when there is nothing to apply.
func RunMigrations(logger *slog.Logger, driver, connectionString string) error {
	logger.Info("running database migrations", slog.String("driver", driver))

	var databaseURL string
	switch driver {
	case "sqlite":
		// The sqlite connection string is a plain file path.
		databaseURL = "sqlite://" + connectionString
	case "postgres":
		databaseURL = connectionString
	default:
		return fmt.Errorf("failed to create migrate instance: unsupported database driver: %s", driver)
	}

	source, err := iofs.New(migrations.FS, migrationsDir(driver))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}

// migrationsDir maps the database driver to its embedded migrations directory.
func migrationsDir(driver string) string {
	if driver == "postgres" {
		return "postgresql"
	}
	return driver
}
