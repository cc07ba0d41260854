// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps a local SQLite history of grounded answers: the
// prompt, the raw response, the rendered Markdown, and the sources cited.
// The history is for browsing and export; it is never used to answer a
// prompt.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/grounding/pkg/types"
)

const dbFile = "grounding.db"

// timeLayout is fixed width so created_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned by Get for an unknown entry ID.
var ErrNotFound = errors.New("archive entry not found")

// Entry is one archived answer.
type Entry struct {
	ID        string              `json:"id" yaml:"id"`
	CreatedAt time.Time           `json:"created_at" yaml:"created_at"`
	Prompt    string              `json:"prompt" yaml:"prompt"`
	Model     string              `json:"model" yaml:"model"`
	Tool      string              `json:"tool,omitempty" yaml:"tool,omitempty"`
	Response  types.ModelResponse `json:"response" yaml:"response"`
	Markdown  string              `json:"markdown" yaml:"markdown"`
	Sources   []Source            `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// Source is a resolvable grounding chunk of an archived answer.
type Source struct {
	// Position is the 1-based chunk position used by the footnote markers.
	Position int             `json:"position" yaml:"position"`
	Kind     types.ChunkKind `json:"kind" yaml:"kind"`
	Title    string          `json:"title" yaml:"title"`
	URI      string          `json:"uri" yaml:"uri"`
}

// SourcesOf lists the resolvable chunks of resp in position order.
func SourcesOf(resp types.ModelResponse) []Source {
	if resp.GroundingMetadata == nil {
		return nil
	}
	var out []Source
	for i, chunk := range resp.GroundingMetadata.GroundingChunks {
		src, kind, ok := chunk.Source()
		if !ok {
			continue
		}
		out = append(out, Source{Position: i + 1, Kind: kind, Title: src.Title, URI: src.URI})
	}
	return out
}

// Store manages the archive database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the archive at cfg.Dir/grounding.db and creates the
// schema if it does not exist.
func Open(cfg types.ArchiveConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
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
		`CREATE TABLE IF NOT EXISTS answers (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			prompt TEXT NOT NULL,
			model TEXT,
			tool TEXT,
			text TEXT NOT NULL,
			markdown TEXT NOT NULL,
			response TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sources (
			answer_id TEXT NOT NULL REFERENCES answers(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			kind TEXT NOT NULL,
			title TEXT,
			uri TEXT,
			PRIMARY KEY (answer_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_answers_created_at ON answers(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores e and its sources in one transaction and returns the new
// entry ID. ID and CreatedAt are assigned when empty; Sources are derived
// from the response when nil.
func (s *Store) Record(ctx context.Context, e Entry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.Sources == nil {
		e.Sources = SourcesOf(e.Response)
	}

	respJSON, err := json.Marshal(e.Response)
	if err != nil {
		return "", fmt.Errorf("marshaling response: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO answers (id, created_at, prompt, model, tool, text, markdown, response)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt.UTC().Format(timeLayout), e.Prompt, e.Model, e.Tool,
		e.Response.Text, e.Markdown, string(respJSON),
	); err != nil {
		return "", fmt.Errorf("inserting answer: %w", err)
	}

	for _, src := range e.Sources {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sources (answer_id, position, kind, title, uri) VALUES (?, ?, ?, ?, ?)`,
			e.ID, src.Position, string(src.Kind), src.Title, src.URI,
		); err != nil {
			return "", fmt.Errorf("inserting source %d: %w", src.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing answer: %w", err)
	}
	return e.ID, nil
}

// Get returns the entry with the given ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	entries, err := s.query(ctx, `WHERE id = ?`, []any{id}, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &entries[0], nil
}

// List returns the newest entries first. A non-positive limit uses the
// store default.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	return s.query(ctx, "", nil, s.limit(limit))
}

// Search returns entries whose prompt or answer text contains query,
// ignoring case, newest first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Entry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	pattern := "%" + escapeLike(query) + "%"
	return s.query(ctx,
		`WHERE prompt LIKE ? ESCAPE '\' OR text LIKE ? ESCAPE '\'`,
		[]any{pattern, pattern}, s.limit(limit))
}

func (s *Store) limit(n int) int {
	if n <= 0 {
		return s.maxResults
	}
	return n
}

// escapeLike escapes LIKE wildcards so query matches literally.
func escapeLike(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(q)
}

func (s *Store) query(ctx context.Context, where string, args []any, limit int) ([]Entry, error) {
	q := `SELECT id, created_at, prompt, model, tool, markdown, response FROM answers ` +
		where + ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			createdAt string
			model     sql.NullString
			tool      sql.NullString
			respJSON  string
		)
		if err := rows.Scan(&e.ID, &createdAt, &e.Prompt, &model, &tool, &e.Markdown, &respJSON); err != nil {
			return nil, fmt.Errorf("scanning answer: %w", err)
		}
		e.Model = model.String
		e.Tool = tool.String
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at of %s: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(respJSON), &e.Response); err != nil {
			return nil, fmt.Errorf("decoding response of %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating answers: %w", err)
	}

	for i := range entries {
		if entries[i].Sources, err = s.sources(ctx, entries[i].ID); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (s *Store) sources(ctx context.Context, answerID string) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, kind, title, uri FROM sources WHERE answer_id = ? ORDER BY position`, answerID)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		var (
			src   Source
			kind  string
			title sql.NullString
			uri   sql.NullString
		)
		if err := rows.Scan(&src.Position, &kind, &title, &uri); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		src.Kind = types.ChunkKind(kind)
		src.Title = title.String
		src.URI = uri.String
		out = append(out, src)
	}
	return out, rows.Err()
}
