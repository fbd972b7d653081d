// Copyright EcoInfo AI, 2026. All rights reserved.

// Package index maintains a SQLite full-text index over the abstract cache
// so cached papers can be searched locally without re-querying providers.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ecoinfoai/eDNA-lit-miner/internal/cache"
)

// Store manages the abstract index database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the index database at path, creating the schema if
// it does not exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			zotero_key TEXT NOT NULL,
			species TEXT NOT NULL,
			title TEXT,
			authors TEXT,
			year TEXT,
			doi TEXT,
			source TEXT,
			url TEXT,
			abstract TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_species ON papers(species)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='papers_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE papers_fts USING fts5(title, abstract, content=papers, content_rowid=rowid)`,
			`CREATE TRIGGER papers_ai AFTER INSERT ON papers BEGIN
				INSERT INTO papers_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
			`CREATE TRIGGER papers_ad AFTER DELETE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
			END`,
			`CREATE TRIGGER papers_au AFTER UPDATE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
				INSERT INTO papers_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// Rebuild replaces the index contents with the live cache contents in one
// transaction. Returns the number of papers indexed.
func (s *Store) Rebuild(ctx context.Context, species []*cache.SpeciesEntry) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM papers`); err != nil {
		return 0, fmt.Errorf("clearing index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (zotero_key, species, title, authors, year, doi, source, url, abstract)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	indexed := 0
	for _, sp := range species {
		for _, paper := range sp.Papers {
			authorsJSON, _ := json.Marshal(paper.Authors)
			_, err := stmt.ExecContext(ctx,
				paper.ZoteroKey, sp.Name, paper.Title, string(authorsJSON),
				paper.Year, paper.DOI, paper.Source, paper.URL, paper.Abstract,
			)
			if err != nil {
				return 0, fmt.Errorf("indexing paper %s: %w", paper.ZoteroKey, err)
			}
			indexed++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing index rebuild: %w", err)
	}
	return indexed, nil
}

// Hit is one full-text search match.
type Hit struct {
	Species   string   `json:"species"`
	ZoteroKey string   `json:"zotero_key"`
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Year      string   `json:"year"`
	DOI       string   `json:"doi"`
}

// Search runs an FTS5 match over titles and abstracts, ranked by relevance.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.species, p.zotero_key, p.title, p.authors, p.year, p.doi
		 FROM papers_fts
		 JOIN papers p ON p.rowid = papers_fts.rowid
		 WHERE papers_fts MATCH ?
		 ORDER BY papers_fts.rank
		 LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var authorsJSON string
		if err := rows.Scan(&h.Species, &h.ZoteroKey, &h.Title, &authorsJSON, &h.Year, &h.DOI); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		if authorsJSON != "" {
			if err := json.Unmarshal([]byte(authorsJSON), &h.Authors); err != nil {
				return nil, fmt.Errorf("parsing authors for %s: %w", h.ZoteroKey, err)
			}
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
