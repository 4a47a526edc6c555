//go:build integration

package repository

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"

	"github.com/scribe/scribe/internal/testutil"
)

func TestIntegrationMigration_ApplyAllTables(t *testing.T) {
	ctx, pool, _ := newMigrationTestEnv(t)

	for _, table := range []string{"users", "posts", "goose_db_version"} {
		t.Run(table, func(t *testing.T) {
			exists, err := tableExists(ctx, pool, table)
			if err != nil {
				t.Fatalf("tableExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Table %q should exist after migrations", table)
			}
		})
	}
}

func TestIntegrationMigration_TableSchemas(t *testing.T) {
	ctx, pool, _ := newMigrationTestEnv(t)

	expected := map[string][]string{
		"users": {"id", "name", "email", "password", "created_at"},
		"posts": {"id", "title", "content", "author_id", "created_at"},
	}

	for table, columns := range expected {
		for _, col := range columns {
			t.Run(table+"."+col, func(t *testing.T) {
				exists, err := columnExists(ctx, pool, table, col)
				if err != nil {
					t.Fatalf("columnExists failed: %v", err)
				}
				if !exists {
					t.Errorf("Column %q should exist in %s table", col, table)
				}
			})
		}
	}
}

func TestIntegrationMigration_Constraints(t *testing.T) {
	ctx, pool, _ := newMigrationTestEnv(t)

	if err := testutil.ResetSchema(ctx, pool); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	// Email uniqueness is enforced by the schema, not only by the application.
	insertUser := `INSERT INTO users (id, name, email, password) VALUES ($1, 'n', 'dup@x.com', 'h')`
	if _, err := pool.Exec(ctx, insertUser, "01HZY00000000000000000000A"); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	_, err := pool.Exec(ctx, insertUser, "01HZY00000000000000000000B")
	if !isUniqueViolation(err) {
		t.Errorf("second insert error = %v, want unique violation", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO posts (id, title, content, author_id)
		VALUES ('01HZY00000000000000000000C', $1, 'c', '01HZY00000000000000000000A')
	`, strings.Repeat("t", 201))
	if err == nil {
		t.Error("Expected length violation for title > 200 chars")
	}
}

func TestIntegrationMigration_RollbackPosts(t *testing.T) {
	ctx, pool, db := newMigrationTestEnv(t)

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("set dialect: %v", err)
	}
	if err := goose.DownContext(ctx, db, "migrations"); err != nil {
		t.Fatalf("down migration: %v", err)
	}

	exists, err := tableExists(ctx, pool, "posts")
	if err != nil {
		t.Fatalf("tableExists failed: %v", err)
	}
	if exists {
		t.Error("posts table should not exist after rollback")
	}

	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("reapply migrations: %v", err)
	}
	exists, err = tableExists(ctx, pool, "posts")
	if err != nil {
		t.Fatalf("tableExists failed: %v", err)
	}
	if !exists {
		t.Error("posts table should exist after reapplying migrations")
	}
}

func TestIntegrationMigration_Idempotency(t *testing.T) {
	ctx, _, db := newMigrationTestEnv(t)

	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("second apply should not fail: %v", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		t.Fatalf("GetDBVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("schema version = %d, want 2", version)
	}
}

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`, tableName).Scan(&exists)
	return exists, err
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.columns
			WHERE table_schema = 'public'
			AND table_name = $1
			AND column_name = $2
		)
	`, tableName, columnName).Scan(&exists)
	return exists, err
}

func newMigrationTestEnv(t *testing.T) (context.Context, *pgxpool.Pool, *sql.DB) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	unlock, err := testutil.AcquireDBLock(ctx, pool)
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("open migration db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return ctx, pool, db
}
