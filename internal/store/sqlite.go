package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLite is a document-store sink over a single SQLite file: one table
// keyed by (collection, id) with a JSON payload per document. Writes are
// single-document with no cross-document atomicity, matching the sink
// contract.
type SQLite struct {
	db    *sql.DB
	names NameMapper
}

// OpenSQLite opens (creating if needed) the document store at path
func OpenSQLite(path string, names NameMapper) (*SQLite, error) {
	if names == nil {
		names = DefaultNames
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL mode for concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id         TEXT NOT NULL,
		data       TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (datetime('now')),
		PRIMARY KEY (collection, id)
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLite{db: db, names: names}, nil
}

// Close closes the underlying database
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Save upserts one document into a collection
func (s *SQLite) Save(ctx context.Context, kind Kind, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", kind, id, err)
	}

	query := `INSERT INTO documents (collection, id, data, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(collection, id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, s.names(kind), id, string(data)); err != nil {
		return fmt.Errorf("save %s/%s: %w", kind, id, err)
	}
	return nil
}

// LoadAll returns the documents of a collection in insertion order. A
// non-positive limit loads everything.
func (s *SQLite) LoadAll(ctx context.Context, kind Kind, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unlimited
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, data FROM documents WHERE collection = ? ORDER BY rowid LIMIT ?",
		s.names(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var data string
		if err := rows.Scan(&doc.ID, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		doc.Data = []byte(data)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Delete removes one document from a collection
func (s *SQLite) Delete(ctx context.Context, kind Kind, id string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?", s.names(kind), id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", kind, id, err)
	}
	return nil
}

// UpdateAliases rewrites the alias list inside a stored document
func (s *SQLite) UpdateAliases(ctx context.Context, kind Kind, id string, aliases []string) error {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE collection = ? AND id = ?", s.names(kind), id).Scan(&data)
	if err == sql.ErrNoRows {
		return fmt.Errorf("update aliases: %s/%s not found", kind, id)
	}
	if err != nil {
		return fmt.Errorf("update aliases %s/%s: %w", kind, id, err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return fmt.Errorf("decode %s/%s: %w", kind, id, err)
	}
	doc["aliases"] = aliases

	updated, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", kind, id, err)
	}
	if _, err := s.db.ExecContext(ctx,
		"UPDATE documents SET data = ?, updated_at = datetime('now') WHERE collection = ? AND id = ?",
		string(updated), s.names(kind), id); err != nil {
		return fmt.Errorf("update aliases %s/%s: %w", kind, id, err)
	}
	return nil
}
