package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/domino14/bearoff/board"
	"github.com/domino14/bearoff/ratio"
)

var ErrNotFound = errors.New("store: board not found")

// SQLiteStore keeps solved positions in a SQLite database. Use ":memory:"
// for a throwaway database.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// a :memory: database lives per connection
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS expectations (
		board TEXT PRIMARY KEY,
		checkers INTEGER NOT NULL,
		pips INTEGER NOT NULL,
		value TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_checkers ON expectations(checkers);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save upserts every entry in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO expectations (board, checkers, pips, value) VALUES (?, ?, ?, ?)
		ON CONFLICT(board) DO UPDATE SET value = excluded.value`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx, e.Board.String(), e.Board.Checkers(),
			e.Board.Pips(), e.Value.String())
		if err != nil {
			return fmt.Errorf("insert %v: %w", e.Board, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Debug().Int("entries", len(entries)).Msg("sqlite-saved")
	return nil
}

func scanEntry(bs, value string) (Entry, error) {
	b, err := board.Parse(bs)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	v, err := ratio.Parse(value)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return Entry{Board: b, Value: v}, nil
}

// Load returns every entry, fewest checkers first.
func (s *SQLiteStore) Load(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT board, value FROM expectations ORDER BY checkers, board")
	if err != nil {
		return nil, fmt.Errorf("query expectations: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var bs, vs string
		if err := rows.Scan(&bs, &vs); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		e, err := scanEntry(bs, vs)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Lookup(ctx context.Context, b board.Board) (ratio.Ratio, error) {
	var vs string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM expectations WHERE board = ?", b.String()).Scan(&vs)
	if errors.Is(err, sql.ErrNoRows) {
		return ratio.Ratio{}, fmt.Errorf("%w: %v", ErrNotFound, b)
	}
	if err != nil {
		return ratio.Ratio{}, fmt.Errorf("query %v: %w", b, err)
	}
	v, err := ratio.Parse(vs)
	if err != nil {
		return ratio.Ratio{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return v, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM expectations").Scan(&n)
	return n, err
}
