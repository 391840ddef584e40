// ABOUTME: SQLite-backed Tracker using modernc.org/sqlite
// ABOUTME: Optional durable backend; INSERT OR IGNORE gives first-writer-wins

package ownership

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteTracker persists ownership records to a SQLite database so they
// survive process restarts. It implements the same first-writer-wins
// contract as MemoryTracker; INSERT OR IGNORE makes concurrent first writes
// race-free at the database level.
type SQLiteTracker struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteTracker opens (or creates) the tracker database at path.
// Parent directories are created if needed.
func NewSQLiteTracker(path string) (*SQLiteTracker, error) {
	logger := slog.Default().With("component", "ownership")

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL mode keeps concurrent readers off the writers' lock.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS conversation_owners (
			conversation_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("ownership store initialized", "path", path)
	return &SQLiteTracker{db: db, logger: logger}, nil
}

// Track records sessionID as the owner of conversationID unless an owner
// already exists.
func (s *SQLiteTracker) Track(ctx context.Context, conversationID, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO conversation_owners (conversation_id, session_id) VALUES (?, ?)`,
		conversationID, sessionID,
	)
	if err != nil {
		return fmt.Errorf("recording ownership: %w", err)
	}
	return nil
}

// IsOwnedBy reports whether conversationID is recorded as owned by sessionID.
func (s *SQLiteTracker) IsOwnedBy(ctx context.Context, conversationID, sessionID string) (bool, error) {
	var owner string
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id FROM conversation_owners WHERE conversation_id = ?`,
		conversationID,
	).Scan(&owner)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying ownership: %w", err)
	}
	return owner == sessionID, nil
}

// Forget removes the record for conversationID, if present.
func (s *SQLiteTracker) Forget(ctx context.Context, conversationID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM conversation_owners WHERE conversation_id = ?`, conversationID,
	); err != nil {
		return fmt.Errorf("deleting ownership record: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteTracker) Close() error {
	return s.db.Close()
}
