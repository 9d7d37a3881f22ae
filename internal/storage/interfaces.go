// Package storage provides archive persistence for Converse sessions.
//
// The engine itself is in-memory; the archive store persists session export
// snapshots so conversations survive restarts and can be inspected offline.
// Backends are small and interchangeable: the interface is the contract,
// sqlite and postgres are the implementations.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates that the requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// Snapshot is one archived session export.
type Snapshot struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Payload   []byte    `json:"payload"` // Serialized session export (JSON)
}

// SnapshotSummary is the listing view of an archived session.
type SnapshotSummary struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	SizeBytes int       `json:"size_bytes"`
}

// ArchiveStore persists session snapshots.
type ArchiveStore interface {
	// Save creates or updates the snapshot for a session (upsert semantics).
	Save(ctx context.Context, sessionID string, payload []byte) error

	// Load retrieves the snapshot for a session.
	// Returns ErrNotFound if no snapshot exists.
	Load(ctx context.Context, sessionID string) (*Snapshot, error)

	// List returns summaries of all archived sessions, newest first.
	List(ctx context.Context) ([]SnapshotSummary, error)

	// Delete removes the snapshot for a session.
	// Returns ErrNotFound if no snapshot exists.
	Delete(ctx context.Context, sessionID string) error

	// Close releases the underlying database resources.
	Close() error
}
