// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index mirrors the paper store into a SQLite database with a
// full-text index over titles, summaries and authors.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-feed/pkg/types"
)

const defaultMaxResults = 20

// Index manages the SQLite mirror.
type Index struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the database at path, creating its directory and
// schema as needed.
func Open(path string) (*Index, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ix := &Index{db: db, maxResults: defaultMaxResults}
	if err := ix.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return ix, nil
}

// Close releases the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			position INTEGER NOT NULL,
			title TEXT,
			authors TEXT,
			published TEXT,
			summary TEXT,
			category TEXT,
			url TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_category ON papers(category)`,
		`CREATE TABLE IF NOT EXISTS syncs (
			id TEXT PRIMARY KEY,
			synced_at TEXT NOT NULL,
			last_updated TEXT,
			papers INTEGER NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := ix.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS4 virtual table with triggers for sync.
	var ftsExists int
	if err := ix.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='papers_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE papers_fts USING fts4(content="papers", title, summary, authors)`,
			`CREATE TRIGGER papers_bd BEFORE DELETE ON papers BEGIN
				DELETE FROM papers_fts WHERE docid = old.rowid;
			END`,
			`CREATE TRIGGER papers_ai AFTER INSERT ON papers BEGIN
				INSERT INTO papers_fts(docid, title, summary, authors)
				VALUES (new.rowid, new.title, new.summary, new.authors);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := ix.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// Sync replaces the mirrored papers with the contents of s in one
// transaction and records the run. It returns the number of papers
// written.
func (ix *Index) Sync(ctx context.Context, s types.Store) (int, error) {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM papers`); err != nil {
		return 0, fmt.Errorf("clearing papers: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (id, position, title, authors, published, summary, category, url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for i, p := range s.Papers {
		authors := p.Authors
		if authors == nil {
			authors = []string{}
		}
		authorsJSON, err := json.Marshal(authors)
		if err != nil {
			return 0, fmt.Errorf("encoding authors of %s: %w", p.ID, err)
		}
		res, err := stmt.ExecContext(ctx,
			p.ID, i, p.Title, string(authorsJSON), p.Published, p.Summary, p.Category, p.URL,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting paper %s: %w", p.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("inserting paper %s: %w", p.ID, err)
		}
		if n > 0 {
			written++
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO syncs (id, synced_at, last_updated, papers) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), time.Now().UTC().Format(time.RFC3339Nano), s.LastUpdated, written,
	)
	if err != nil {
		return 0, fmt.Errorf("recording sync: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing sync: %w", err)
	}
	return written, nil
}

// SyncRecord describes one Sync call.
type SyncRecord struct {
	ID          string `json:"id"`
	SyncedAt    string `json:"synced_at"`
	LastUpdated string `json:"last_updated"`
	Papers      int    `json:"papers"`
}

// LastSync returns the most recent sync, or nil if the index was never
// synced.
func (ix *Index) LastSync(ctx context.Context) (*SyncRecord, error) {
	var (
		rec         SyncRecord
		lastUpdated sql.NullString
	)
	err := ix.db.QueryRowContext(ctx,
		`SELECT id, synced_at, last_updated, papers FROM syncs ORDER BY rowid DESC LIMIT 1`,
	).Scan(&rec.ID, &rec.SyncedAt, &lastUpdated, &rec.Papers)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying last sync: %w", err)
	}
	rec.LastUpdated = lastUpdated.String
	return &rec, nil
}

// QueryOptions holds parameters for index searches.
type QueryOptions struct {
	// Query is an FTS4 MATCH expression. Empty lists papers in store
	// order.
	Query string

	// Category filters by exact category term.
	Category string

	// MaxResults limits result count. Zero uses the default (20).
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Category == ""
}

// Search returns matching papers in store order (newest known first).
func (ix *Index) Search(ctx context.Context, opts QueryOptions) ([]types.Paper, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = ix.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT p.id, p.title, p.authors, p.published, p.summary, p.category, p.url FROM papers p`)
	if opts.Query != "" {
		qb.WriteString(` JOIN papers_fts ON papers_fts.docid = p.rowid WHERE papers_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(` WHERE 1=1`)
	}
	if opts.Category != "" {
		qb.WriteString(` AND p.category = ?`)
		args = append(args, opts.Category)
	}
	qb.WriteString(` ORDER BY p.position LIMIT ?`)
	args = append(args, maxResults)

	rows, err := ix.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var results []types.Paper
	for rows.Next() {
		var (
			p           types.Paper
			authorsJSON sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Title, &authorsJSON, &p.Published, &p.Summary, &p.Category, &p.URL); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if authorsJSON.Valid && authorsJSON.String != "" {
			if err := json.Unmarshal([]byte(authorsJSON.String), &p.Authors); err != nil {
				return nil, fmt.Errorf("decoding authors of %s: %w", p.ID, err)
			}
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// Count returns the number of mirrored papers.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := ix.db.QueryRowContext(ctx, `SELECT count(*) FROM papers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return n, nil
}
