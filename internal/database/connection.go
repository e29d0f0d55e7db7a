package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"lease-reconciliation-service/internal/config"
)

func NewConnection(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		if !strings.Contains(err.Error(), "Unknown database") {
			db.Close()
			return nil, fmt.Errorf("error pinging database: %w", err)
		}
		logger.Info("database does not exist, attempting to create it", zap.String("database", cfg.Database.Name))
		db.Close()

		if err := createDatabase(ctx, cfg); err != nil {
			return nil, err
		}
		logger.Info("created database", zap.String("database", cfg.Database.Name))

		db, err = sql.Open("mysql", cfg.GetDSN())
		if err != nil {
			return nil, fmt.Errorf("error connecting to new database: %w", err)
		}
		if err = db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("error verifying connection to new database: %w", err)
		}
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	logger.Info("connected to MySQL database", zap.String("host", cfg.Database.Host), zap.Int("port", cfg.Database.Port))
	return db, nil
}

func createDatabase(ctx context.Context, cfg *config.Config) error {
	rootDB, err := sql.Open("mysql", getRootDSN(cfg))
	if err != nil {
		return fmt.Errorf("error connecting to MySQL root: %w", err)
	}
	defer rootDB.Close()

	stmt := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", cfg.Database.Name)
	if _, err := rootDB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("error creating database: %w", err)
	}
	return nil
}

func getRootDSN(cfg *config.Config) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/?parseTime=true",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
	)
}

// WithTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
