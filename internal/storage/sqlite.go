package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"resume-reviewer/internal/domain"
	"resume-reviewer/internal/metrics"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	_ "modernc.org/sqlite" // Pure Go driver, CGO-free, compatible with CGO_ENABLED=0
)

// schemaVersion is stored in PRAGMA user_version. On mismatch the tables are
// dropped and recreated: a format change discards old data safely instead of
// tripping over it.
const schemaVersion = 1

// defaultSettings is served when no settings document is stored or the stored
// one is malformed.
const defaultSettings = `{"theme":"light"}`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dsn string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// A single connection serializes writers; with the pure Go driver this
	// avoids SQLITE_BUSY under concurrent Record calls.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version != 0 && version != schemaVersion {
		slog.Warn("stored schema version mismatch, discarding old data",
			"stored", version, "expected", schemaVersion)
		if _, err := db.Exec("DROP TABLE IF EXISTS history; DROP TABLE IF EXISTS settings;"); err != nil {
			return fmt.Errorf("drop old tables: %w", err)
		}
	}

	schema := `
    CREATE TABLE IF NOT EXISTS history (
        id                   TEXT PRIMARY KEY,
        created_at           DATETIME NOT NULL,
        target_role          TEXT NOT NULL,
        job_description      TEXT NOT NULL,
        resume_display_name  TEXT NOT NULL,
        resume_text_snapshot TEXT NOT NULL,
        environment_label    TEXT NOT NULL,
        result_data          TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_history_created ON history(created_at);
    CREATE TABLE IF NOT EXISTS settings (
        id  INTEGER PRIMARY KEY CHECK (id = 1),
        doc TEXT NOT NULL
    );
    `
	if _, err := db.Exec(schema); err != nil {
		return err
	}

	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d;", schemaVersion))
	return err
}

// Record inserts the entry and prunes everything beyond the HistoryLimit
// newest rows in the same transaction, so readers never observe more than the
// capacity.
func (r *SQLiteRepository) Record(ctx context.Context, entry domain.HistoryEntry) error {
	resultData, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO history (id, created_at, target_role, job_description,
            resume_display_name, resume_text_snapshot, environment_label, result_data)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `, entry.ID, entry.CreatedAt, entry.TargetRole, entry.JobDescription,
		entry.ResumeDisplayName, entry.ResumeTextSnapshot, entry.EnvironmentLabel,
		string(resultData)); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
        DELETE FROM history WHERE id NOT IN (
            SELECT id FROM history ORDER BY created_at DESC, rowid DESC LIMIT ?
        )
    `, HistoryLimit); err != nil {
		return fmt.Errorf("prune history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	r.observeSize(ctx)
	return nil
}

// List returns up to HistoryLimit entries, most recent first. Rows whose
// stored result no longer unmarshals are logged and skipped.
func (r *SQLiteRepository) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, created_at, target_role, job_description,
               resume_display_name, resume_text_snapshot, environment_label, result_data
        FROM history
        ORDER BY created_at DESC, rowid DESC
        LIMIT ?
    `, HistoryLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.HistoryEntry{}
	for rows.Next() {
		var entry domain.HistoryEntry
		var resultData string
		if err := rows.Scan(&entry.ID, &entry.CreatedAt, &entry.TargetRole,
			&entry.JobDescription, &entry.ResumeDisplayName, &entry.ResumeTextSnapshot,
			&entry.EnvironmentLabel, &resultData); err != nil {
			slog.Warn("scan history entry failed", "error", err)
			continue
		}
		if err := json.Unmarshal([]byte(resultData), &entry.Result); err != nil {
			slog.Warn("unmarshal stored result failed, skipping entry",
				"id", entry.ID, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Clear removes all history entries unconditionally.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM history"); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	metrics.HistorySize.Set(0)
	return nil
}

// Settings returns the stored settings document. No row or a malformed
// document both yield the defaults.
func (r *SQLiteRepository) Settings(ctx context.Context) (string, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, "SELECT doc FROM settings WHERE id = 1").Scan(&doc)
	switch {
	case err == sql.ErrNoRows:
		return defaultSettings, nil
	case err != nil:
		return "", fmt.Errorf("read settings: %w", err)
	}

	if !gjson.Valid(doc) {
		slog.Warn("stored settings malformed, serving defaults")
		return defaultSettings, nil
	}
	return doc, nil
}

// UpdateSettings merges the top-level fields of patch into the stored
// document and persists the result.
func (r *SQLiteRepository) UpdateSettings(ctx context.Context, patch string) (string, error) {
	if !gjson.Valid(patch) {
		return "", fmt.Errorf("settings patch is not valid JSON")
	}

	doc, err := r.Settings(ctx)
	if err != nil {
		return "", err
	}

	var mergeErr error
	gjson.Parse(patch).ForEach(func(key, value gjson.Result) bool {
		doc, mergeErr = sjson.Set(doc, key.String(), value.Value())
		return mergeErr == nil
	})
	if mergeErr != nil {
		return "", fmt.Errorf("merge settings: %w", mergeErr)
	}

	if _, err := r.db.ExecContext(ctx, `
        INSERT INTO settings (id, doc) VALUES (1, ?)
        ON CONFLICT(id) DO UPDATE SET doc = excluded.doc
    `, doc); err != nil {
		return "", fmt.Errorf("write settings: %w", err)
	}
	return doc, nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) observeSize(ctx context.Context) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM history").Scan(&n); err != nil {
		return
	}
	metrics.HistorySize.Set(float64(n))
}
