package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Migrate applies all pending schema migrations to the database at dsn.
func Migrate(ctx context.Context, dsn string) error {
	return withGoose(ctx, dsn, func(db *sql.DB) error {
		if err := goose.Up(db, migrationsDir); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		return nil
	})
}

// Status prints the applied state of every migration.
func Status(ctx context.Context, dsn string) error {
	return withGoose(ctx, dsn, func(db *sql.DB) error {
		if err := goose.Status(db, migrationsDir); err != nil {
			return fmt.Errorf("failed to read migration status: %w", err)
		}
		return nil
	})
}

func withGoose(ctx context.Context, dsn string, fn func(db *sql.DB) error) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	return fn(db)
}
