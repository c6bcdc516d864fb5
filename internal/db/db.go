// ABOUTME: Database connection and schema management for marginalia.
// ABOUTME: Opens SQLite with retries on a busy file and runs migrations.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	_ "modernc.org/sqlite"

	"github.com/harper/marginalia/internal/logx"
)

const schema = `
CREATE TABLE IF NOT EXISTS contents (
    id TEXT PRIMARY KEY,
    slug TEXT UNIQUE NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    subject_id TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    blocks TEXT NOT NULL DEFAULT '[]',
    sort_order INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS subjects (
    id TEXT PRIMARY KEY,
    slug TEXT UNIQUE NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    sort_order INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT UNIQUE NOT NULL,
    content_id TEXT NOT NULL,
    text TEXT NOT NULL,
    highlighted_text TEXT NOT NULL,
    context_before TEXT NOT NULL,
    context_after TEXT NOT NULL,
    resolved INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS notes_content_id ON notes(content_id);

CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
    text, highlighted_text, content='notes', content_rowid='seq'
);

CREATE TRIGGER IF NOT EXISTS notes_ai AFTER INSERT ON notes BEGIN
    INSERT INTO notes_fts(rowid, text, highlighted_text) VALUES (NEW.seq, NEW.text, NEW.highlighted_text);
END;

CREATE TRIGGER IF NOT EXISTS notes_ad AFTER DELETE ON notes BEGIN
    INSERT INTO notes_fts(notes_fts, rowid, text, highlighted_text) VALUES('delete', OLD.seq, OLD.text, OLD.highlighted_text);
END;

CREATE TRIGGER IF NOT EXISTS notes_au AFTER UPDATE ON notes BEGIN
    INSERT INTO notes_fts(notes_fts, rowid, text, highlighted_text) VALUES('delete', OLD.seq, OLD.text, OLD.highlighted_text);
    INSERT INTO notes_fts(rowid, text, highlighted_text) VALUES (NEW.seq, NEW.text, NEW.highlighted_text);
END;
`

type openOptions struct {
	attempts uint
	delay    time.Duration
	logger   *slog.Logger
}

// OpenOption configures Open.
type OpenOption func(*openOptions)

// WithRetry sets how many times the first ping is attempted.
func WithRetry(attempts uint, delay time.Duration) OpenOption {
	return func(o *openOptions) {
		if attempts > 0 {
			o.attempts = attempts
		}
		o.delay = delay
	}
}

func WithLogger(l *slog.Logger) OpenOption {
	return func(o *openOptions) {
		o.logger = l
	}
}

func Open(ctx context.Context, path string, opts ...OpenOption) (*sql.DB, error) {
	o := openOptions{
		attempts: 3,
		delay:    300 * time.Millisecond,
		logger:   logx.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A shared file may be briefly locked by another marginalia process. The
	// busy timeout is in the DSN so every pooled connection waits on locks.
	if err := retry.Do(
		func() error { return db.PingContext(ctx) },
		retry.Context(ctx),
		retry.Delay(o.delay),
		retry.Attempts(o.attempts),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			o.logger.WarnContext(ctx, "failed ping to database",
				slog.Any("err", err),
				slog.Uint64("attempt", uint64(attempt)))
		}),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

// migrate brings databases created before subjects existed up to date.
func migrate(ctx context.Context, db *sql.DB) error {
	has, err := hasColumn(ctx, db, "contents", "subject_id")
	if err != nil {
		return err
	}
	if !has {
		if _, err := db.ExecContext(ctx, `ALTER TABLE contents ADD COLUMN subject_id TEXT NOT NULL DEFAULT ''`); err != nil {
			return fmt.Errorf("add contents.subject_id: %w", err)
		}
	}
	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS contents_subject_id ON contents(subject_id)`)
	return err
}

func hasColumn(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("inspect %s: %w", table, err)
	}
	return n > 0, nil
}
