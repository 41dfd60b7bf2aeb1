// Package store persists document metadata in SQLite: one row per
// document plus one inverted table per entity type. The store is a
// single-writer, multi-reader resource; writes serialize through an
// internal mutex and WAL mode keeps readers unblocked.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/doclens/doclens/internal/entity"
	derrors "github.com/doclens/doclens/internal/errors"
)

// metadataCacheSize bounds the read cache used by the fuzzy-filter scan
// path, which re-reads the same candidates across queries.
const metadataCacheSize = 4096

// DocumentMetadata is the stored view of one document. Entity slices
// hold canonical names only and are kept sorted.
type DocumentMetadata struct {
	DocID         string
	WordCount     int
	People        []string
	Organizations []string
	Locations     []string
	Dates         []string
	Emails        []string
}

// Store is the SQLite-backed metadata store.
type Store struct {
	mu     sync.Mutex // serializes writers; readers go straight to the pool
	db     *sql.DB
	path   string
	closed bool
	cache  *lru.Cache[string, *DocumentMetadata]
}

// entityTables maps entity types to their table and value column.
var entityTables = []struct {
	typ    entity.Type
	table  string
	column string
}{
	{entity.TypePerson, "people", "name"},
	{entity.TypeOrganization, "organizations", "name"},
	{entity.TypeLocation, "locations", "name"},
	{entity.TypeDate, "dates", "date_str"},
	{entity.TypeEmail, "emails", "email"},
}

// Open creates or opens the metadata database at path. An empty path
// opens an in-memory store for testing.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single connection: SQLite writes serialize anyway and this keeps
	// the in-memory DSN coherent.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	if path == "" {
		pragmas = pragmas[1:] // WAL is meaningless in memory
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	cache, err := lru.New[string, *DocumentMetadata](metadataCacheSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, path: path, cache: cache}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		doc_id     TEXT PRIMARY KEY,
		word_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS people (
		id     INTEGER PRIMARY KEY AUTOINCREMENT,
		doc_id TEXT NOT NULL REFERENCES documents(doc_id),
		name   TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS organizations (
		id     INTEGER PRIMARY KEY AUTOINCREMENT,
		doc_id TEXT NOT NULL REFERENCES documents(doc_id),
		name   TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS locations (
		id     INTEGER PRIMARY KEY AUTOINCREMENT,
		doc_id TEXT NOT NULL REFERENCES documents(doc_id),
		name   TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS dates (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		doc_id   TEXT NOT NULL REFERENCES documents(doc_id),
		date_str TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS emails (
		id     INTEGER PRIMARY KEY AUTOINCREMENT,
		doc_id TEXT NOT NULL REFERENCES documents(doc_id),
		email  TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_people_name ON people(name);
	CREATE INDEX IF NOT EXISTS idx_people_doc ON people(doc_id);
	CREATE INDEX IF NOT EXISTS idx_orgs_name ON organizations(name);
	CREATE INDEX IF NOT EXISTS idx_orgs_doc ON organizations(doc_id);
	CREATE INDEX IF NOT EXISTS idx_locations_name ON locations(name);
	CREATE INDEX IF NOT EXISTS idx_locations_doc ON locations(doc_id);
	CREATE INDEX IF NOT EXISTS idx_dates_str ON dates(date_str);
	CREATE INDEX IF NOT EXISTS idx_dates_doc ON dates(doc_id);
	CREATE INDEX IF NOT EXISTS idx_emails_email ON emails(email);
	CREATE INDEX IF NOT EXISTS idx_emails_doc ON emails(doc_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put upserts all metadata for one document atomically: previous rows
// for the doc id are deleted and the new sets inserted in a single
// transaction. A failed attempt rolls back and is retried once.
func (s *Store) Put(ctx context.Context, meta *DocumentMetadata) error {
	if meta == nil || meta.DocID == "" {
		return derrors.New(derrors.ErrCodeInvalidInput, "metadata requires a doc id", nil)
	}

	err := derrors.Retry(ctx, derrors.DefaultRetryConfig(), func() error {
		if err := s.putOnce(ctx, meta); err != nil {
			return derrors.Wrap(derrors.ErrCodeStorePut, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Remove(meta.DocID)
	return nil
}

func (s *Store) putOnce(ctx context.Context, meta *DocumentMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (doc_id, word_count) VALUES (?, ?)`,
		meta.DocID, meta.WordCount); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}

	values := map[string][]string{
		"people":        meta.People,
		"organizations": meta.Organizations,
		"locations":     meta.Locations,
		"dates":         meta.Dates,
		"emails":        meta.Emails,
	}

	for _, et := range entityTables {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE doc_id = ?`, et.table), meta.DocID); err != nil {
			return fmt.Errorf("clear %s: %w", et.table, err)
		}

		insert := fmt.Sprintf(`INSERT INTO %s (doc_id, %s) VALUES (?, ?)`, et.table, et.column)
		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return fmt.Errorf("prepare %s insert: %w", et.table, err)
		}
		for _, v := range values[et.table] {
			if _, err := stmt.ExecContext(ctx, meta.DocID, v); err != nil {
				_ = stmt.Close()
				return fmt.Errorf("insert into %s: %w", et.table, err)
			}
		}
		_ = stmt.Close()
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.Debug("stored metadata", slog.String("doc_id", meta.DocID))
	return nil
}

// Get returns the metadata for a document, or nil when the document is
// unknown.
func (s *Store) Get(ctx context.Context, docID string) (*DocumentMetadata, error) {
	if cached, ok := s.cache.Get(docID); ok {
		return cached, nil
	}

	var wordCount int
	err := s.db.QueryRowContext(ctx,
		`SELECT word_count FROM documents WHERE doc_id = ?`, docID).Scan(&wordCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeStoreQuery, err)
	}

	meta := &DocumentMetadata{DocID: docID, WordCount: wordCount}
	targets := map[string]*[]string{
		"people":        &meta.People,
		"organizations": &meta.Organizations,
		"locations":     &meta.Locations,
		"dates":         &meta.Dates,
		"emails":        &meta.Emails,
	}

	for _, et := range entityTables {
		query := fmt.Sprintf(`SELECT %s FROM %s WHERE doc_id = ? ORDER BY %s`,
			et.column, et.table, et.column)
		rows, err := s.db.QueryContext(ctx, query, docID)
		if err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeStoreQuery, err)
		}
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				_ = rows.Close()
				return nil, derrors.Wrap(derrors.ErrCodeStoreQuery, err)
			}
			*targets[et.table] = append(*targets[et.table], v)
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return nil, derrors.Wrap(derrors.ErrCodeStoreQuery, err)
		}
		_ = rows.Close()
	}

	s.cache.Add(docID, meta)
	return meta, nil
}

// AllIDs returns every stored doc id in ascending order, for consistency
// checks against the BM25 index.
func (s *Store) AllIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc_id FROM documents ORDER BY doc_id`)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeStoreQuery, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeStoreQuery, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
