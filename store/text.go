// Package store reads and writes solved positions. The text format is one
// entry per line, "[c1,c2,c3,c4,c5,c6] num/den"; a SQLite database holds the
// same entries for random access.
package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/domino14/bearoff/board"
	"github.com/domino14/bearoff/memo"
	"github.com/domino14/bearoff/ratio"
)

var ErrMalformed = errors.New("store: malformed entry")

type Entry struct {
	Board board.Board
	Value ratio.Ratio
}

func (e Entry) String() string {
	return e.Board.String() + " " + e.Value.String()
}

// Entries pulls every solved position out of a table, in table order.
func Entries(t *memo.Table[ratio.Ratio]) []Entry {
	boards := t.Boards()
	out := make([]Entry, 0, len(boards))
	for _, b := range boards {
		v, _ := t.Lookup(b)
		out = append(out, Entry{Board: b, Value: v})
	}
	return out
}

// Preload seeds a table with loaded entries. Entries already present win.
func Preload(t *memo.Table[ratio.Ratio], entries []Entry) int {
	n := 0
	for _, e := range entries {
		if t.Store(e.Board, e.Value) {
			n++
		}
	}
	return n
}

func WriteText(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := fmt.Fprintln(bw, e.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseEntry reads one line of the text format.
func ParseEntry(line string) (Entry, error) {
	line = strings.TrimSpace(line)
	end := strings.IndexByte(line, ']')
	if !strings.HasPrefix(line, "[") || end < 0 {
		return Entry{}, fmt.Errorf("%w: %q", ErrMalformed, line)
	}
	b, err := board.Parse(line[:end+1])
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	rest := strings.TrimSpace(line[end+1:])
	if rest == "" {
		return Entry{}, fmt.Errorf("%w: missing value in %q", ErrMalformed, line)
	}
	v, err := ratio.Parse(rest)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return Entry{Board: b, Value: v}, nil
}

// ReadText reads the text format. Blank lines and lines starting with # are
// skipped. The first bad line aborts the read.
func ReadText(r io.Reader) ([]Entry, error) {
	var out []Entry
	sc := bufio.NewScanner(r)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, err := ParseEntry(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteReport writes entries for people rather than programs: board, pip
// count, exact value and a decimal approximation.
func WriteReport(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		_, err := fmt.Fprintf(bw, "%s %d %s %s\n", e.Board, e.Board.Pips(),
			e.Value, e.Value.FloatString(6))
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}
