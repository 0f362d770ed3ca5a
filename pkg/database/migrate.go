package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// RunMigrations applies every pending "up" migration found in migrations.
// It opens a temporary database/sql connection through the pgx stdlib driver.
func RunMigrations(databaseURL string, migrations fs.FS, logger *slog.Logger) (err error) {
	m, err := newMigrator(databaseURL, migrations)
	if err != nil {
		return err
	}
	defer closeMigrator(m, &err)

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("Database migrations applied successfully.")
	return nil
}

// RollbackMigrations reverts the given number of applied migrations.
func RollbackMigrations(databaseURL string, migrations fs.FS, steps int, logger *slog.Logger) (err error) {
	m, err := newMigrator(databaseURL, migrations)
	if err != nil {
		return err
	}
	defer closeMigrator(m, &err)

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	logger.Info("Rolled back migrations", slog.Int("steps", steps))
	return nil
}

// closeMigrator releases the source and the database connection, both owned by m once it exists.
func closeMigrator(m *migrate.Migrate, errp *error) {
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		*errp = errors.Join(*errp, fmt.Errorf("migration source error: %w", sourceErr))
	}
	if dbErr != nil {
		*errp = errors.Join(*errp, fmt.Errorf("migration database error: %w", dbErr))
	}
}

// newMigrator closes its connection itself on failure; on success m.Close does.
func newMigrator(databaseURL string, migrations fs.FS) (*migrate.Migrate, error) {
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection for migrations: %w", err)
	}
	closeDB := func() {
		if cerr := migrationDB.Close(); cerr != nil {
			slog.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}
	if err := migrationDB.Ping(); err != nil {
		closeDB()
		return nil, fmt.Errorf("failed to ping database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("could not create postgres driver instance for migrations: %w", err)
	}

	source, err := iofs.New(migrations, ".")
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("could not read embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}
