// Package board contains the bearoff position: how many checkers sit on each
// of the six home-board points. Point 1 is one pip away from being borne off.
package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// NumPoints is the number of playable points.
const NumPoints = 6

var (
	ErrMalformed = errors.New("board: malformed board")
	ErrTooMany   = errors.New("board: too many checkers on a point")
)

// A Board holds the checker count for points 1..6 at indices 0..5. Borne-off
// checkers are not tracked. Boards are values, so they can be compared with ==
// and used as map keys.
type Board [NumPoints]uint8

// Empty is the board with every checker borne off.
var Empty = Board{}

// New builds a board from exactly six non-negative counts.
func New(counts ...int) (Board, error) {
	var b Board
	if len(counts) != NumPoints {
		return b, fmt.Errorf("%w: need %d counts, got %d", ErrMalformed, NumPoints, len(counts))
	}
	for i, c := range counts {
		if c < 0 {
			return b, fmt.Errorf("%w: negative count %d on point %d", ErrMalformed, c, i+1)
		}
		if c > 255 {
			return b, fmt.Errorf("%w: %d on point %d", ErrTooMany, c, i+1)
		}
		b[i] = uint8(c)
	}
	return b, nil
}

// MustNew is like New but panics on error.
func MustNew(counts ...int) Board {
	b, err := New(counts...)
	if err != nil {
		panic(err)
	}
	return b
}

// Count returns the number of checkers on the given point (1..6).
func (b Board) Count(point int) int {
	return int(b[point-1])
}

func (b Board) Checkers() int {
	n := 0
	for _, c := range b {
		n += int(c)
	}
	return n
}

// Pips is the total distance the checkers still have to travel.
func (b Board) Pips() int {
	n := 0
	for i, c := range b {
		n += (i + 1) * int(c)
	}
	return n
}

func (b Board) IsEmpty() bool {
	return b == Empty
}

// Highest returns the highest occupied point, or 0 if the board is empty.
func (b Board) Highest() int {
	for p := NumPoints; p >= 1; p-- {
		if b[p-1] > 0 {
			return p
		}
	}
	return 0
}

// Less orders boards lexicographically from point 1 up.
func (b Board) Less(o Board) bool {
	for i := range b {
		if b[i] != o[i] {
			return b[i] < o[i]
		}
	}
	return false
}

// String returns the board as "[c1,c2,c3,c4,c5,c6]".
func (b Board) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(c)))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Parse reads a board written by String. The brackets are optional and the
// counts may be separated by commas or whitespace.
func Parse(s string) (Board, error) {
	t := strings.TrimSpace(s)
	t = strings.TrimPrefix(t, "[")
	t = strings.TrimSuffix(t, "]")
	fields := strings.FieldsFunc(t, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	counts := make([]int, 0, len(fields))
	for _, f := range fields {
		c, err := strconv.Atoi(f)
		if err != nil {
			return Board{}, fmt.Errorf("%w: %q", ErrMalformed, s)
		}
		counts = append(counts, c)
	}
	b, err := New(counts...)
	if err != nil {
		return Board{}, fmt.Errorf("parsing %q: %w", s, err)
	}
	return b, nil
}

// ToDisplayText draws the board with the highest point on top, one row
// per point.
func (b Board) ToDisplayText() string {
	var sb strings.Builder
	for p := NumPoints; p >= 1; p-- {
		fmt.Fprintf(&sb, "%d | %s\n", p, strings.Repeat("o", b.Count(p)))
	}
	fmt.Fprintf(&sb, "checkers: %d  pips: %d\n", b.Checkers(), b.Pips())
	return sb.String()
}
