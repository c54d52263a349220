package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/udisondev/masterserver/internal/db/migrations"
)

// RunMigrations применяет goose-миграции статистики к PostgreSQL по DSN.
func RunMigrations(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "postgres"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// migrateSqlite применяет миграции sqlite-диалекта к уже открытой базе.
// Работает через тот же *sql.DB, что и хранилище: база ":memory:" живёт
// ровно одно соединение, и отдельный sql.Open увидел бы пустую базу.
func migrateSqlite(ctx context.Context, sqlDB *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "sqlite"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
