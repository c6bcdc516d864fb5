// ABOUTME: Tests for database initialization and migrations.
// ABOUTME: Verifies schema creation and open retries.

package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTest(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenCreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := Open(context.Background(), dbPath, WithRetry(1, time.Millisecond))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected database file to be created")
	}
}

func TestOpenRunsMigrations(t *testing.T) {
	db := openTest(t)

	tables := []string{"contents", "subjects", "notes", "notes_fts"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s to exist: %v", table, err)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	for i := 0; i < 2; i++ {
		db, err := Open(context.Background(), path)
		if err != nil {
			t.Fatalf("open %d failed: %v", i, err)
		}
		_ = db.Close()
	}
}

func TestOpenSetsBusyTimeoutOnEveryConnection(t *testing.T) {
	db := openTest(t)
	db.SetMaxIdleConns(0)

	for i := 0; i < 3; i++ {
		var ms int
		if err := db.QueryRow("PRAGMA busy_timeout").Scan(&ms); err != nil {
			t.Fatalf("read busy_timeout: %v", err)
		}
		if ms != 5000 {
			t.Errorf("busy_timeout = %d, want 5000", ms)
		}
	}
}

func TestOpenAddsSubjectColumnToOlderDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "old.db")
	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw: %v", err)
	}
	_, err = raw.ExecContext(ctx, `CREATE TABLE contents (
		id TEXT PRIMARY KEY, slug TEXT UNIQUE NOT NULL, title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '', category TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '[]', blocks TEXT NOT NULL DEFAULT '[]',
		sort_order INTEGER NOT NULL DEFAULT 0, created_at DATETIME NOT NULL, updated_at DATETIME NOT NULL)`)
	if err != nil {
		t.Fatalf("create old schema: %v", err)
	}
	_ = raw.Close()

	db, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	has, err := hasColumn(ctx, db, "contents", "subject_id")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !has {
		t.Error("expected subject_id column after migration")
	}
}
