// Package history stores past analyses in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/analizador-es/analizador/pkg/compiler"
	"github.com/analizador-es/analizador/pkg/logger"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DefaultLimit is used by Recent when limit is not positive.
const DefaultLimit = 20

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("history: entry not found")

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL UNIQUE,
	created_at  INTEGER NOT NULL,
	source      TEXT NOT NULL,
	result      TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	line        INTEGER NOT NULL DEFAULT 0,
	tokens      INTEGER NOT NULL DEFAULT 0,
	duration_ns INTEGER NOT NULL DEFAULT 0
)`

// Entry is one recorded analysis. Exactly one of Result and Error is set
// for entries built by NewEntry.
type Entry struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"fecha"`
	Source    string        `json:"codigo"`
	Result    string        `json:"resultado,omitempty"`
	Error     string        `json:"error,omitempty"`
	Line      int           `json:"linea,omitempty"`
	Tokens    int           `json:"tokens"`
	Duration  time.Duration `json:"duracion"`
}

// NewEntry describes the outcome of one pipeline run.
func NewEntry(source string, result *compiler.Result, err error, d time.Duration) Entry {
	e := Entry{Source: source, Duration: d}

	if err != nil {
		e.Error = err.Error()
		var ae *compiler.AnalysisError
		if errors.As(err, &ae) {
			e.Error = ae.Message
			e.Line = ae.Line
			e.Tokens = len(ae.Tokens)
		}
		return e
	}

	if result != nil {
		e.Result = result.Value.String()
		e.Tokens = len(result.Tokens)
	}
	return e
}

// Store is a history database. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	// SQLite allows a single writer, and every connection to :memory:
	// would see its own empty database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	s := &Store{
		db:  db,
		log: logger.GetLogger(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.log.Debug("History opened", "path", path)
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores e, assigning a fresh ID and timestamp, and returns the
// stored entry.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	e.ID = uuid.NewString()
	e.CreatedAt = s.now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, created_at, source, result, error, line, tokens, duration_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt.UnixNano(), e.Source, e.Result, e.Error, e.Line, e.Tokens, int64(e.Duration))
	if err != nil {
		return Entry{}, fmt.Errorf("failed to record analysis: %w", err)
	}

	s.log.Debug("Analysis recorded", "id", e.ID, "failed", e.Error != "")
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source, result, error, line, tokens, duration_ns
		 FROM analyses ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	return entries, nil
}

// Get returns the entry with the given id.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, source, result, error, line, tokens, duration_ns
		 FROM analyses WHERE id = ?`, id)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e        Entry
		created  int64
		duration int64
	)
	err := row.Scan(&e.ID, &created, &e.Source, &e.Result, &e.Error, &e.Line, &e.Tokens, &duration)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan failed: %w", err)
	}
	e.CreatedAt = time.Unix(0, created).UTC()
	e.Duration = time.Duration(duration)
	return e, nil
}
