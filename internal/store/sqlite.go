package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/delta-drills/mcp-practice/internal/engine"
)

const schema = `
CREATE TABLE IF NOT EXISTS practice_states (
    user_id TEXT PRIMARY KEY,
    document TEXT NOT NULL,
    schema_version INTEGER NOT NULL,
    updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);
`

// SQLiteStore keeps one JSON document per user in a sqlite table. It is the
// primary persistent store; row-level access control is the deployment's
// concern, not enforced here.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the sqlite database at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing state schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load fetches the user's document, returning (nil, nil) when none exists.
func (s *SQLiteStore) Load(ctx context.Context, userID string) (*engine.UserPracticeState, error) {
	var document string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM practice_states WHERE user_id = ?`, userID,
	).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading practice state: %w", err)
	}
	return unmarshalState([]byte(document))
}

// Save replaces the user's document in a single upsert. The row is only
// touched when the new document marshals cleanly, so a failed save leaves
// the previous document intact.
func (s *SQLiteStore) Save(ctx context.Context, userID string, state *engine.UserPracticeState) error {
	data, err := marshalState(state)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO practice_states (user_id, document, schema_version, updated_at)
		VALUES (?, ?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(user_id) DO UPDATE SET
			document = excluded.document,
			schema_version = excluded.schema_version,
			updated_at = excluded.updated_at`,
		userID, string(data), engine.SchemaVersion)
	if err != nil {
		return fmt.Errorf("saving practice state: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
