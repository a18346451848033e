package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brygga/kortlek/internal/app"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// tipSeenKey is the settings row holding the onboarding flag.
const tipSeenKey = "tip_seen_at"

// Repository persists the onboarding flag and the interaction log.
type Repository struct {
	db *sql.DB
}

// Open opens (and if needed creates) the database at path.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens an in-memory database, used by tests.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the schema when missing.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			card_index INTEGER NOT NULL,
			occurred_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_occurred_at
			ON interactions(occurred_at);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// TipSeen reports whether the onboarding flag was ever written.
func (r *Repository) TipSeen(ctx context.Context) (bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, tipSeenKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return value != "", nil
}

// MarkTipSeen records the onboarding completion time; idempotent.
func (r *Repository) MarkTipSeen(ctx context.Context, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings(key, value) VALUES (?, ?)
		ON CONFLICT(key) DO NOTHING
	`, tipSeenKey, ts(at))
	return err
}

// RecordInteraction appends one event to the log.
func (r *Repository) RecordInteraction(ctx context.Context, ev app.InteractionEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO interactions(id, kind, card_index, occurred_at)
		VALUES (?, ?, ?, ?)
	`, ev.ID, ev.Kind, ev.CardIndex, ts(ev.OccurredAt))
	return err
}

// ListInteractions returns up to limit events, newest first.
func (r *Repository) ListInteractions(ctx context.Context, limit int) ([]app.InteractionEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, card_index, occurred_at
		FROM interactions
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []app.InteractionEvent
	for rows.Next() {
		var (
			ev   app.InteractionEvent
			when string
		)
		if err := rows.Scan(&ev.ID, &ev.Kind, &ev.CardIndex, &when); err != nil {
			return nil, err
		}
		ev.OccurredAt, err = parseTS(when)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTS(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", v, err)
	}
	return t, nil
}
