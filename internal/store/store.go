// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store keeps a history of pipeline runs and their annotated
// tokens in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/wiki-nlp/pkg/types"
)

const defaultRunLimit = 20

// ErrRunNotFound is returned when a run ID has no record.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded pipeline execution.
type Run struct {
	ID         int64     `json:"id" yaml:"id"`
	Term       string    `json:"term" yaml:"term"`
	Title      string    `json:"title" yaml:"title"`
	URL        string    `json:"url" yaml:"url"`
	Language   string    `json:"language" yaml:"language"`
	Model      string    `json:"model" yaml:"model"`
	TokenCount int       `json:"token_count" yaml:"token_count"`
	SavedPath  string    `json:"saved_path,omitempty" yaml:"saved_path,omitempty"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path and creates the
// schema if it does not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
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
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			term TEXT NOT NULL,
			title TEXT NOT NULL,
			url TEXT,
			language TEXT,
			model TEXT,
			token_count INTEGER NOT NULL,
			saved_path TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tokens (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			text TEXT NOT NULL,
			lemma TEXT,
			pos TEXT,
			tag TEXT,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tokens_lemma ON tokens(lemma)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_term ON runs(term)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores run and its tokens in one transaction and returns the new
// run ID. TokenCount is set from tokens and a zero CreatedAt becomes now.
func (s *Store) Record(ctx context.Context, run Run, tokens []types.AnnotatedToken) (int64, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.TokenCount = len(tokens)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (term, title, url, language, model, token_count, saved_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Term, run.Title, run.URL, run.Language, run.Model,
		run.TokenCount, run.SavedPath, run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tokens (run_id, position, text, lemma, pos, tag) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, tok := range tokens {
		if _, err := stmt.ExecContext(ctx, id, i, tok.Text, tok.Lemma, tok.POS, tok.Tag); err != nil {
			return 0, fmt.Errorf("inserting token %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

// Runs returns up to limit runs, newest first. A non-positive limit uses
// the default of 20.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, term, title, url, language, model, token_count, saved_path, created_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get returns the run with id.
func (s *Store) Get(ctx context.Context, id int64) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, term, title, url, language, model, token_count, saved_path, created_at
		 FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	return r, err
}

// Tokens returns the tokens recorded for runID in document order.
func (s *Store) Tokens(ctx context.Context, runID int64) ([]types.AnnotatedToken, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text, lemma, pos, tag FROM tokens WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying tokens: %w", err)
	}
	defer rows.Close()

	var toks []types.AnnotatedToken
	for rows.Next() {
		var (
			t               types.AnnotatedToken
			lemma, pos, tag sql.NullString
		)
		if err := rows.Scan(&t.Text, &lemma, &pos, &tag); err != nil {
			return nil, fmt.Errorf("scanning token: %w", err)
		}
		t.Lemma, t.POS, t.Tag = lemma.String, pos.String, tag.String
		toks = append(toks, t)
	}
	return toks, rows.Err()
}

// LemmaCounts returns how often each lemma with the given POS occurs in
// runID, most frequent first. An empty pos matches every tag.
func (s *Store) LemmaCounts(ctx context.Context, runID int64, pos string, limit int) ([]LemmaCount, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT lemma, count(*) AS n FROM tokens
		 WHERE run_id = ? AND (? = '' OR pos = ?)
		 GROUP BY lemma ORDER BY n DESC, lemma LIMIT ?`,
		runID, pos, pos, limit)
	if err != nil {
		return nil, fmt.Errorf("counting lemmas: %w", err)
	}
	defer rows.Close()

	var out []LemmaCount
	for rows.Next() {
		var c LemmaCount
		if err := rows.Scan(&c.Lemma, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning lemma count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LemmaCount is a lemma frequency within one run.
type LemmaCount struct {
	Lemma string `json:"lemma" yaml:"lemma"`
	Count int    `json:"count" yaml:"count"`
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r                       Run
		url, lang, model, saved sql.NullString
		created                 string
	)
	if err := sc.Scan(&r.ID, &r.Term, &r.Title, &url, &lang, &model, &r.TokenCount, &saved, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	r.URL, r.Language, r.Model, r.SavedPath = url.String, lang.String, model.String, saved.String

	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Run{}, fmt.Errorf("parsing created_at %q: %w", created, err)
	}
	r.CreatedAt = t
	return r, nil
}
