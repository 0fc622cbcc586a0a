// Package export writes a built symbol table to a SQLite database so other
// tools can query it without re-indexing.
package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/phobologic/rustsym/internal/store"
)

// SchemaVersion is stored in the metadata table.
const SchemaVersion = 1

const schema = `
CREATE TABLE metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

CREATE TABLE files (
    id INTEGER PRIMARY KEY,
    path TEXT NOT NULL UNIQUE
);

CREATE TABLE symbols (
    id INTEGER PRIMARY KEY,     -- record id
    name TEXT NOT NULL,
    name_lower TEXT NOT NULL,
    kind TEXT NOT NULL,
    container TEXT,             -- NULL unless a field with a known owner
    file_id INTEGER NOT NULL REFERENCES files(id),
    line INTEGER NOT NULL       -- 0-based
);

CREATE INDEX idx_symbols_name ON symbols(name);
CREATE INDEX idx_symbols_name_lower ON symbols(name_lower);
CREATE INDEX idx_symbols_file_id ON symbols(file_id);
`

// WriteSQLite replaces path with a database holding every record of st.
// The store must be finalized.
func WriteSQLite(ctx context.Context, path, root string, st *store.Store) error {
	if !st.Finalized() {
		return errors.New("export: store is not finalized")
	}

	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return errors.New("export: database path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return fmt.Errorf("export: %s is a directory", cleanPath)
	}
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: creating %s: %w", dir, err)
		}
	}
	if err := os.Remove(cleanPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("export: removing old database: %w", err)
	}

	db, err := sql.Open("sqlite", cleanPath)
	if err != nil {
		return fmt.Errorf("export: opening %s: %w", cleanPath, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("export: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("export: creating schema: %w", err)
	}

	meta := map[string]string{
		"schema_version": strconv.Itoa(SchemaVersion),
		"workspace_root": root,
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO metadata(key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("export: writing metadata: %w", err)
		}
	}

	fileIDs := make(map[string]int64)
	fileStmt, err := tx.PrepareContext(ctx, `INSERT INTO files(id, path) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("export: preparing files insert: %w", err)
	}
	defer fileStmt.Close()
	for i, p := range st.FilePaths() {
		id := int64(i + 1)
		if _, err := fileStmt.ExecContext(ctx, id, p); err != nil {
			return fmt.Errorf("export: writing file %s: %w", p, err)
		}
		fileIDs[p] = id
	}

	symStmt, err := tx.PrepareContext(ctx, `INSERT INTO symbols(id, name, name_lower, kind, container, file_id, line)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("export: preparing symbols insert: %w", err)
	}
	defer symStmt.Close()
	for i, s := range st.Records() {
		var container sql.NullString
		if s.Container != "" {
			container = sql.NullString{String: s.Container, Valid: true}
		}
		_, err := symStmt.ExecContext(ctx, i, s.Name, s.NameLower, string(s.Kind), container,
			fileIDs[s.Location.File], s.Location.Line)
		if err != nil {
			return fmt.Errorf("export: writing symbol %q: %w", s.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("export: commit: %w", err)
	}
	return nil
}
