package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"lease-reconciliation-service/internal/config"
)

// Migrator is the subset of *migrate.Migrate the migration commands use.
type Migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
}

// Migrate ensures the database exists and applies command (up, down or
// version) from the configured migration directory.
func Migrate(ctx context.Context, cfg *config.Config, command string, steps int, logger *zap.Logger) error {
	db, err := NewConnection(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to ensure database exists: %w", err)
	}
	db.Close()

	m, err := migrate.New(fmt.Sprintf("file://%s", cfg.Migration.Dir), cfg.GetMigrationDBURL())
	if err != nil {
		return fmt.Errorf("failed to initialize migrate: %w", err)
	}
	defer m.Close()

	return RunMigration(m, command, steps, logger)
}

// RunMigration runs one migration command. steps of 0 means all pending
// migrations.
func RunMigration(m Migrator, command string, steps int, logger *zap.Logger) error {
	var err error
	switch command {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "version":
		version, dirty, verErr := m.Version()
		if verErr != nil {
			if errors.Is(verErr, migrate.ErrNilVersion) {
				logger.Info("no migrations have been applied yet")
				return nil
			}
			return fmt.Errorf("failed to get version: %w", verErr)
		}
		logger.Info("current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	default:
		return fmt.Errorf("invalid migration command: %s", command)
	}

	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no migration changes to apply")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("migration completed", zap.String("command", command), zap.Int("steps", steps))
	return nil
}
