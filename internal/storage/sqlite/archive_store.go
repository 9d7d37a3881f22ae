// Package sqlite implements the archive store on SQLite via modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/skellner/converse/internal/storage"
)

// Schema is the embedded archive schema, applied on open.
const Schema = `
CREATE TABLE IF NOT EXISTS session_archive (
    session_id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    payload    BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_session_archive_updated
    ON session_archive(updated_at DESC);
`

// ArchiveStore implements storage.ArchiveStore using SQLite.
type ArchiveStore struct {
	db *sql.DB
}

// NewArchiveStore opens a SQLite archive store, configures WAL mode, and
// creates the schema.
func NewArchiveStore(dsn string) (*ArchiveStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Using a single open
	// connection serialises writes and avoids SQLITE_BUSY errors under
	// concurrent load. WAL mode lets readers proceed without blocking the
	// writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &ArchiveStore{db: db}, nil
}

// Save creates or updates the snapshot for a session (upsert semantics).
func (s *ArchiveStore) Save(ctx context.Context, sessionID string, payload []byte) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session ID is required", storage.ErrInvalidInput)
	}
	if len(payload) == 0 {
		return fmt.Errorf("%w: payload is required", storage.ErrInvalidInput)
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_archive (session_id, created_at, updated_at, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, sessionID, now, now, payload)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load retrieves the snapshot for a session.
func (s *ArchiveStore) Load(ctx context.Context, sessionID string) (*storage.Snapshot, error) {
	snap := &storage.Snapshot{SessionID: sessionID}
	err := s.db.QueryRowContext(ctx, `
		SELECT created_at, updated_at, payload
		FROM session_archive
		WHERE session_id = ?
	`, sessionID).Scan(&snap.CreatedAt, &snap.UpdatedAt, &snap.Payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: session %s", storage.ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return snap, nil
}

// List returns summaries of all archived sessions, newest first.
func (s *ArchiveStore) List(ctx context.Context) ([]storage.SnapshotSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, created_at, updated_at, length(payload)
		FROM session_archive
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var summaries []storage.SnapshotSummary
	for rows.Next() {
		var summary storage.SnapshotSummary
		if err := rows.Scan(&summary.SessionID, &summary.CreatedAt, &summary.UpdatedAt, &summary.SizeBytes); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// Delete removes the snapshot for a session.
func (s *ArchiveStore) Delete(ctx context.Context, sessionID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM session_archive WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: session %s", storage.ErrNotFound, sessionID)
	}
	return nil
}

// Close releases the underlying database resources.
func (s *ArchiveStore) Close() error {
	return s.db.Close()
}
