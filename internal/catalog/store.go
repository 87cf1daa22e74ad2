// Package catalog maintains the external-product catalog used to surface
// startups similar to a branch. Search is purely additive and never touches
// the session graph. When the SQLite driver is compiled with FTS5 (build
// with -tags sqlite_fts5), records are indexed in a virtual table and
// ranked with bm25; otherwise search degrades to a token-overlap scan over
// the same records.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const baseSchema = `
CREATE TABLE IF NOT EXISTS products (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	source      TEXT NOT NULL,
	name        TEXT NOT NULL,
	blurb       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	url         TEXT NOT NULL DEFAULT '',
	features    TEXT NOT NULL DEFAULT ''
);
`

const ftsSchema = `
CREATE VIRTUAL TABLE IF NOT EXISTS products_fts USING fts5(
	name, blurb, description, features,
	content='products', content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS products_ai AFTER INSERT ON products BEGIN
	INSERT INTO products_fts(rowid, name, blurb, description, features)
	VALUES (new.id, new.name, new.blurb, new.description, new.features);
END;

CREATE TRIGGER IF NOT EXISTS products_ad AFTER DELETE ON products BEGIN
	INSERT INTO products_fts(products_fts, rowid, name, blurb, description, features)
	VALUES ('delete', old.id, old.name, old.blurb, old.description, old.features);
END;

CREATE TRIGGER IF NOT EXISTS products_au AFTER UPDATE ON products BEGIN
	INSERT INTO products_fts(products_fts, rowid, name, blurb, description, features)
	VALUES ('delete', old.id, old.name, old.blurb, old.description, old.features);
	INSERT INTO products_fts(rowid, name, blurb, description, features)
	VALUES (new.id, new.name, new.blurb, new.description, new.features);
END;
`

// Product is one catalog record.
type Product struct {
	Source      string   `json:"source"`
	Name        string   `json:"name"`
	Blurb       string   `json:"blurb"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Features    []string `json:"features,omitempty"`
}

// Match is one ranked search result.
type Match struct {
	Name        string  `json:"name"`
	Blurb       string  `json:"blurb"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	Source      string  `json:"source"`
	Score       float64 `json:"score"`
}

// Store wraps the catalog database.
type Store struct {
	db  *sql.DB
	fts bool
}

// Open opens or creates the catalog database at the given path. The FTS5
// index is created when the driver supports it; a driver built without the
// sqlite_fts5 tag falls back to unindexed search.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging catalog database: %w", err)
	}
	if _, err := db.Exec(baseSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing catalog schema: %w", err)
	}

	fts := true
	if _, err := db.Exec(ftsSchema); err != nil {
		if !strings.Contains(err.Error(), "fts5") {
			db.Close()
			return nil, fmt.Errorf("initializing catalog index: %w", err)
		}
		fts = false
	}
	return &Store{db: db, fts: fts}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put inserts products in one transaction.
func (s *Store) Put(ctx context.Context, products []Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO products (source, name, blurb, description, url, features) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, p.Source, p.Name, p.Blurb, p.Description, p.URL,
			strings.Join(p.Features, " ")); err != nil {
			return fmt.Errorf("inserting %q: %w", p.Name, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of catalog records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}

var queryTokenRegex = regexp.MustCompile(`[A-Za-z0-9]+`)

// Search returns the topN catalog records most relevant to the free-text
// query: bm25-ranked through FTS5 when the index exists, otherwise scored
// by token overlap.
func (s *Store) Search(ctx context.Context, query string, topN int) ([]Match, error) {
	tokens := queryTokenRegex.FindAllString(query, -1)
	if len(tokens) == 0 {
		return nil, nil
	}
	if topN <= 0 {
		topN = 5
	}
	if !s.fts {
		return s.scanSearch(ctx, tokens, topN)
	}
	return s.ftsSearch(ctx, tokens, topN)
}

// ftsSearch reduces the tokens to an OR of quoted terms so FTS5 query
// syntax in branch text cannot break the match expression.
func (s *Store) ftsSearch(ctx context.Context, tokens []string, topN int) ([]Match, error) {
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = `"` + strings.ToLower(tok) + `"`
	}
	match := strings.Join(quoted, " OR ")

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.name, p.blurb, p.description, p.url, p.source, products_fts.rank
		 FROM products_fts
		 JOIN products p ON p.id = products_fts.rowid
		 WHERE products_fts MATCH ?
		 ORDER BY products_fts.rank
		 LIMIT ?`, match, topN)
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		var rank float64
		if err := rows.Scan(&m.Name, &m.Blurb, &m.Description, &m.URL, &m.Source, &rank); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		// FTS5 rank is negative bm25: more negative is more relevant.
		m.Score = -rank
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// scanSearch scores each record by how many query tokens its text fields
// contain. Coarser than bm25, but it keeps 'similar' working when the
// driver lacks FTS5.
func (s *Store) scanSearch(ctx context.Context, tokens []string, topN int) ([]Match, error) {
	const haystack = `(p.name || ' ' || p.blurb || ' ' || p.description || ' ' || p.features)`

	terms := make([]string, len(tokens))
	args := make([]any, 0, len(tokens)+1)
	for i, tok := range tokens {
		terms[i] = "(" + haystack + " LIKE ?)"
		args = append(args, "%"+tok+"%")
	}
	args = append(args, topN)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT name, blurb, description, url, source, score FROM (
			SELECT p.name, p.blurb, p.description, p.url, p.source,
				(%s) * 1.0 AS score
			FROM products p
		) WHERE score > 0
		ORDER BY score DESC, name
		LIMIT ?`, strings.Join(terms, " + ")), args...)
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.Name, &m.Blurb, &m.Description, &m.URL, &m.Source, &m.Score); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ImportYC loads a YC company JSON dump (a flat array of records) into the
// catalog.
func (s *Store) ImportYC(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, fmt.Errorf("parsing %s: %w", path, err)
	}

	products := make([]Product, 0, len(raw))
	for _, rec := range raw {
		products = append(products, Product{
			Source:      str(rec, "source", "yc"),
			Name:        str(rec, "name", ""),
			Blurb:       str(rec, "blurb", str(rec, "one_liner", "")),
			Description: str(rec, "description", str(rec, "long_description", "")),
			URL:         str(rec, "url", str(rec, "website", "")),
		})
	}
	if err := s.Put(ctx, products); err != nil {
		return 0, err
	}
	return len(products), nil
}

// ImportProductHunt loads a Product Hunt JSON dump, stored as a map of
// year to record list, flattening all years into the catalog.
func (s *Store) ImportProductHunt(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}

	var byYear map[string][]map[string]any
	if err := json.Unmarshal(data, &byYear); err != nil {
		return 0, fmt.Errorf("parsing %s: %w", path, err)
	}

	var products []Product
	for _, recs := range byYear {
		for _, rec := range recs {
			p := Product{
				Source:      str(rec, "source", "producthunt"),
				Name:        str(rec, "name", str(rec, "title", "")),
				Blurb:       str(rec, "blurb", str(rec, "tagline", "")),
				Description: str(rec, "description", ""),
				URL:         str(rec, "url", ""),
			}
			if features, ok := rec["features"].([]any); ok {
				for _, f := range features {
					if fs, ok := f.(string); ok {
						p.Features = append(p.Features, fs)
					}
				}
			}
			products = append(products, p)
		}
	}
	if err := s.Put(ctx, products); err != nil {
		return 0, err
	}
	return len(products), nil
}

func str(rec map[string]any, key, fallback string) string {
	if v, ok := rec[key].(string); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}
