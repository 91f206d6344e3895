package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"wallet-api/migrations"
	"wallet-api/pkg/config"
	"wallet-api/pkg/logger"
	"wallet-api/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const createMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version     TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    checksum    TEXT NOT NULL,
    applied_at  TIMESTAMPTZ NOT NULL
)`

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Named("migrate")

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	appLogger.Info("Applying migrations")
	applied, err := migrate(ctx, db, appLogger)
	if err != nil {
		appLogger.Fatal("Migration failed", zap.Error(err))
	}
	appLogger.Info("Migrations finished", zap.Int("applied", applied))
}

func migrate(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) (int, error) {
	if _, err := db.Exec(ctx, createMigrationsTable); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	ms, err := migrations.Load()
	if err != nil {
		return 0, err
	}

	done, err := appliedChecksums(ctx, db)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range ms {
		if sum, ok := done[m.Version]; ok {
			if sum != m.Checksum {
				return count, fmt.Errorf("migration %s_%s changed after it was applied", m.Version, m.Name)
			}
			logger.Debug("Migration already applied, skipping", zap.String("version", m.Version))
			continue
		}

		logger.Info("Applying migration", zap.String("version", m.Version), zap.String("name", m.Name))
		if err := apply(ctx, db, m); err != nil {
			return count, fmt.Errorf("apply %s_%s: %w", m.Version, m.Name, err)
		}
		count++
	}
	return count, nil
}

func appliedChecksums(ctx context.Context, db *pgxpool.Pool) (map[string]string, error) {
	sql, args, err := psql.Select("version", "checksum").From("schema_migrations").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var version, checksum string
		if err := rows.Scan(&version, &checksum); err != nil {
			return nil, err
		}
		out[version] = checksum
	}
	return out, rows.Err()
}

// apply runs one migration and records it in the same transaction.
func apply(ctx context.Context, db *pgxpool.Pool, m migrations.Migration) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	if _, err = tx.Exec(ctx, m.SQL); err != nil {
		return err
	}

	sql, args, err := psql.Insert("schema_migrations").
		Columns("version", "name", "checksum", "applied_at").
		Values(m.Version, m.Name, m.Checksum, time.Now()).
		ToSql()
	if err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, sql, args...); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
