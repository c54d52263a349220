package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/udisondev/masterserver/internal/db"
)

// StartPostgres создаёт PostgreSQL testcontainer и возвращает DSN.
// Использует модуль postgres с BasicWaitStrategies (log occurrence(2) + port check).
// Автоматически cleanup при завершении теста.
func StartPostgres(tb testing.TB) string {
	tb.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		tb.Fatalf("starting postgres container: %v", err)
	}

	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			tb.Logf("terminating postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		tb.Fatalf("getting connection string: %v", err)
	}

	return dsn
}

// SetupStatsDB поднимает PostgreSQL testcontainer, применяет миграции
// статистики и возвращает DSN.
func SetupStatsDB(tb testing.TB) string {
	tb.Helper()

	dsn := StartPostgres(tb)
	if err := db.RunMigrations(context.Background(), dsn); err != nil {
		tb.Fatalf("running migrations: %v", err)
	}
	return dsn
}

// SetupForumDB поднимает PostgreSQL testcontainer со схемой пользователей
// форума (phpBB-подобной) и возвращает DSN. Наполнение таблицы остаётся
// на тесте.
func SetupForumDB(tb testing.TB, tablePrefix string) string {
	tb.Helper()

	dsn := StartPostgres(tb)
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		tb.Fatalf("connecting to forum test db: %v", err)
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, fmt.Sprintf(
		`CREATE TABLE %susers (
		     user_id        SERIAL PRIMARY KEY,
		     username       TEXT NOT NULL,
		     username_clean TEXT NOT NULL UNIQUE,
		     user_password  TEXT NOT NULL
		 )`, tablePrefix))
	if err != nil {
		tb.Fatalf("creating forum users table: %v", err)
	}

	return dsn
}
