// Package storage persists the bounded session history and the settings
// document. The history keeps the 5 most recent completed sessions; older
// entries are discarded on insert and unrecoverable.
package storage

import (
	"context"

	"resume-reviewer/internal/domain"
)

// HistoryLimit is the fixed capacity of the session history.
const HistoryLimit = 5

// Repository is the storage interface for session history and settings.
// Corrupted stored data is treated as absence, never as an error.
type Repository interface {
	// Record inserts a history entry and prunes the store to HistoryLimit
	// entries. Unconditional: no deduplication, no merging.
	Record(ctx context.Context, entry domain.HistoryEntry) error
	// List returns the stored entries, most recent first.
	List(ctx context.Context) ([]domain.HistoryEntry, error)
	// Clear removes all history entries.
	Clear(ctx context.Context) error

	// Settings returns the settings JSON document, or the defaults when
	// nothing usable is stored.
	Settings(ctx context.Context) (string, error)
	// UpdateSettings merges the top-level fields of the given JSON document
	// into the stored one and returns the updated document.
	UpdateSettings(ctx context.Context, patch string) (string, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
	Close() error
}
