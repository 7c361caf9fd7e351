// Package snapshot persists a Graph to SQLite and rebuilds one from disk.
// The Graph itself never touches storage — serialization is the host
// process's responsibility, and this package is that collaborator.
package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jward/refgraph/internal/graph"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS files (
  path            TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS symbols (
  id              TEXT PRIMARY KEY,
  name            TEXT NOT NULL,
  kind            TEXT,
  file_path       TEXT,
  line            INTEGER,
  col             INTEGER,
  class_name      TEXT,
  is_exported     BOOLEAN DEFAULT FALSE,
  is_static       BOOLEAN DEFAULT FALSE
);

-- A file's recorded symbol set, kept separately from the global symbol
-- table: membership drives cascading removal and may diverge from the
-- global table after overwrites.
CREATE TABLE IF NOT EXISTS file_symbols (
  file_path       TEXT NOT NULL REFERENCES files(path),
  ordinal         INTEGER NOT NULL,
  id              TEXT NOT NULL,
  name            TEXT NOT NULL,
  kind            TEXT,
  sym_file_path   TEXT,
  line            INTEGER,
  col             INTEGER,
  class_name      TEXT,
  is_exported     BOOLEAN DEFAULT FALSE,
  is_static       BOOLEAN DEFAULT FALSE,
  PRIMARY KEY (file_path, ordinal)
);

CREATE TABLE IF NOT EXISTS references_ (
  id              TEXT PRIMARY KEY,
  from_symbol_id  TEXT NOT NULL,
  to_symbol_id    TEXT NOT NULL,
  kind            TEXT,
  file_path       TEXT,
  line            INTEGER,
  col             INTEGER
);

CREATE TABLE IF NOT EXISTS imports (
  file_path       TEXT NOT NULL REFERENCES files(path),
  ordinal         INTEGER NOT NULL,
  source          TEXT NOT NULL,
  imported        TEXT,
  is_type_only    BOOLEAN DEFAULT FALSE,
  PRIMARY KEY (file_path, ordinal)
);

CREATE TABLE IF NOT EXISTS dirty_files (
  path            TEXT PRIMARY KEY
);

CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
CREATE INDEX IF NOT EXISTS idx_references_from ON references_(from_symbol_id);
CREATE INDEX IF NOT EXISTS idx_references_to ON references_(to_symbol_id);
`

// open opens a SQLite database at path with WAL mode enabled and the schema
// applied.
func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Save writes the entire graph to a SQLite database at path in a single
// transaction, replacing any previous snapshot contents.
func Save(g *graph.Graph, path string) error {
	db, err := open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"dirty_files", "imports", "references_", "file_symbols", "symbols", "files"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, s := range g.AllSymbols() {
		if _, err := tx.Exec(
			`INSERT INTO symbols (id, name, kind, file_path, line, col, class_name, is_exported, is_static)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.Name, s.Kind, s.FilePath, s.Line, s.Column, s.ClassName, s.IsExported, s.IsStatic,
		); err != nil {
			return fmt.Errorf("insert symbol %s: %w", s.ID, err)
		}
	}

	for _, r := range g.AllReferences() {
		if _, err := tx.Exec(
			`INSERT INTO references_ (id, from_symbol_id, to_symbol_id, kind, file_path, line, col)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.FromSymbolID, r.ToSymbolID, r.Kind, r.FilePath, r.Line, r.Column,
		); err != nil {
			return fmt.Errorf("insert reference %s: %w", r.ID, err)
		}
	}

	for _, path := range g.AllFiles() {
		fd, _ := g.FileByPath(path)
		if _, err := tx.Exec("INSERT INTO files (path) VALUES (?)", fd.Path); err != nil {
			return fmt.Errorf("insert file %s: %w", fd.Path, err)
		}
		for i, s := range fd.Symbols {
			if _, err := tx.Exec(
				`INSERT INTO file_symbols (file_path, ordinal, id, name, kind, sym_file_path, line, col, class_name, is_exported, is_static)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				fd.Path, i, s.ID, s.Name, s.Kind, s.FilePath, s.Line, s.Column, s.ClassName, s.IsExported, s.IsStatic,
			); err != nil {
				return fmt.Errorf("insert file symbol %s: %w", s.ID, err)
			}
		}
		for i, imp := range fd.Imports {
			imported, err := json.Marshal(imp.Imported)
			if err != nil {
				return fmt.Errorf("marshal imports for %s: %w", fd.Path, err)
			}
			if _, err := tx.Exec(
				`INSERT INTO imports (file_path, ordinal, source, imported, is_type_only)
				 VALUES (?, ?, ?, ?, ?)`,
				fd.Path, i, imp.Source, string(imported), imp.IsTypeOnly,
			); err != nil {
				return fmt.Errorf("insert import for %s: %w", fd.Path, err)
			}
		}
	}

	for _, p := range g.DirtyFiles() {
		if _, err := tx.Exec("INSERT INTO dirty_files (path) VALUES (?)", p); err != nil {
			return fmt.Errorf("insert dirty file %s: %w", p, err)
		}
	}

	return tx.Commit()
}

// Load rebuilds a Graph from a SQLite snapshot. The graph is reconstructed
// by replaying adds, so adjacency invariants are re-derived rather than
// trusted from disk.
func Load(path string) (*graph.Graph, error) {
	db, err := open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	g := graph.New()

	files, err := loadFiles(db)
	if err != nil {
		return nil, err
	}
	for _, fd := range files {
		g.AddFile(fd)
	}

	// Global symbols last-write-win over the per-file copies, restoring any
	// direct adds and post-file overwrites.
	if err := forEachRow(db,
		`SELECT id, name, kind, file_path, line, col, class_name, is_exported, is_static FROM symbols`,
		func(rows *sql.Rows) error {
			var s graph.Symbol
			if err := rows.Scan(&s.ID, &s.Name, &s.Kind, &s.FilePath, &s.Line, &s.Column, &s.ClassName, &s.IsExported, &s.IsStatic); err != nil {
				return err
			}
			g.AddSymbol(s)
			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("load symbols: %w", err)
	}

	if err := forEachRow(db,
		`SELECT id, from_symbol_id, to_symbol_id, kind, file_path, line, col FROM references_`,
		func(rows *sql.Rows) error {
			var r graph.Reference
			if err := rows.Scan(&r.ID, &r.FromSymbolID, &r.ToSymbolID, &r.Kind, &r.FilePath, &r.Line, &r.Column); err != nil {
				return err
			}
			g.AddReference(r)
			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("load references: %w", err)
	}

	if err := forEachRow(db, `SELECT path FROM dirty_files`, func(rows *sql.Rows) error {
		var p string
		if err := rows.Scan(&p); err != nil {
			return err
		}
		g.MarkFileDirty(p)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load dirty files: %w", err)
	}

	return g, nil
}

// loadFiles reassembles FileData records from files, file_symbols and
// imports, preserving the stored ordinal order.
func loadFiles(db *sql.DB) (map[string]graph.FileData, error) {
	files := make(map[string]graph.FileData)

	if err := forEachRow(db, `SELECT path FROM files`, func(rows *sql.Rows) error {
		var p string
		if err := rows.Scan(&p); err != nil {
			return err
		}
		files[p] = graph.FileData{Path: p}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load files: %w", err)
	}

	if err := forEachRow(db,
		`SELECT file_path, id, name, kind, sym_file_path, line, col, class_name, is_exported, is_static
		 FROM file_symbols ORDER BY file_path, ordinal`,
		func(rows *sql.Rows) error {
			var fp string
			var s graph.Symbol
			if err := rows.Scan(&fp, &s.ID, &s.Name, &s.Kind, &s.FilePath, &s.Line, &s.Column, &s.ClassName, &s.IsExported, &s.IsStatic); err != nil {
				return err
			}
			fd := files[fp]
			fd.Symbols = append(fd.Symbols, s)
			files[fp] = fd
			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("load file symbols: %w", err)
	}

	if err := forEachRow(db,
		`SELECT file_path, source, imported, is_type_only FROM imports ORDER BY file_path, ordinal`,
		func(rows *sql.Rows) error {
			var fp, source, importedJSON string
			var isTypeOnly bool
			if err := rows.Scan(&fp, &source, &importedJSON, &isTypeOnly); err != nil {
				return err
			}
			imp := graph.ImportEntry{Source: source, IsTypeOnly: isTypeOnly}
			if importedJSON != "" {
				if err := json.Unmarshal([]byte(importedJSON), &imp.Imported); err != nil {
					return fmt.Errorf("unmarshal imported names: %w", err)
				}
			}
			fd := files[fp]
			fd.Imports = append(fd.Imports, imp)
			files[fp] = fd
			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("load imports: %w", err)
	}

	return files, nil
}

func forEachRow(db *sql.DB, query string, scan func(*sql.Rows) error) error {
	rows, err := db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
