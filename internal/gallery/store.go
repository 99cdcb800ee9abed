// Package gallery manages the fixed set of target-identity overlay images:
// a SQLite-backed blob store, a file loader, an in-process cache, and a
// deterministic procedural generator for demo assets.
package gallery

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver
)

// Key identifies one overlay in the store.
type Key struct {
	IdentityID   string
	ExpressionID string
}

// Store persists PNG overlay images keyed by (identity, expression).
// PNG data is stored as-is; PNG payloads are already deflate-compressed.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore opens (or creates) an overlay store at path and ensures the
// schema exists.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open gallery store: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS overlays (
			identity_id   TEXT NOT NULL,
			expression_id TEXT NOT NULL,
			image_data    BLOB NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS overlay_index
			ON overlays (identity_id, expression_id);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Put inserts or replaces an overlay PNG.
func (s *Store) Put(identityID, expressionID string, pngData []byte) error {
	if len(pngData) == 0 {
		return fmt.Errorf("refusing to store empty overlay %s/%s", identityID, expressionID)
	}
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO overlays (identity_id, expression_id, image_data) VALUES (?, ?, ?)",
		identityID, expressionID, pngData,
	)
	if err != nil {
		return fmt.Errorf("failed to store overlay %s/%s: %w", identityID, expressionID, err)
	}
	return nil
}

// Get returns the PNG data for an overlay.
func (s *Store) Get(identityID, expressionID string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(
		"SELECT image_data FROM overlays WHERE identity_id=? AND expression_id=?",
		identityID, expressionID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("overlay not found: %s/%s", identityID, expressionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query overlay %s/%s: %w", identityID, expressionID, err)
	}
	return data, nil
}

// Keys lists every stored overlay.
func (s *Store) Keys() ([]Key, error) {
	rows, err := s.db.Query("SELECT identity_id, expression_id FROM overlays ORDER BY identity_id, expression_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list overlays: %w", err)
	}
	defer rows.Close()

	var keys []Key
	for rows.Next() {
		var k Key
		if err := rows.Scan(&k.IdentityID, &k.ExpressionID); err != nil {
			return nil, fmt.Errorf("failed to scan overlay key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
