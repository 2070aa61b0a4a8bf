// Package enumerate lists bearoff positions in the order a table should be
// built: fewer checkers first.
package enumerate

import (
	"gonum.org/v1/gonum/stat/combin"

	"github.com/domino14/bearoff/board"
)

// Count returns how many non-empty boards hold at most maxCheckers checkers.
// Spreading up to n checkers over six points (plus the off tray) is
// choosing 6 of n+6, so this is C(n+6, 6) - 1.
func Count(maxCheckers int) int {
	if maxCheckers < 1 {
		return 0
	}
	return combin.Binomial(maxCheckers+board.NumPoints, board.NumPoints) - 1
}

// Walk calls fn for every board with 1 to maxCheckers checkers. Boards come
// ordered by checker count and then lexicographically from point 1. It stops
// at the first error fn returns.
func Walk(maxCheckers int, fn func(board.Board) error) error {
	for n := 1; n <= maxCheckers; n++ {
		var b board.Board
		if err := walkExactly(&b, 0, n, fn); err != nil {
			return err
		}
	}
	return nil
}

// walkExactly distributes left checkers over points idx+1..6.
func walkExactly(b *board.Board, idx, left int, fn func(board.Board) error) error {
	if idx == board.NumPoints-1 {
		b[idx] = uint8(left)
		err := fn(*b)
		b[idx] = 0
		return err
	}
	for c := 0; c <= left; c++ {
		b[idx] = uint8(c)
		if err := walkExactly(b, idx+1, left-c, fn); err != nil {
			b[idx] = 0
			return err
		}
	}
	b[idx] = 0
	return nil
}

// Boards collects Walk's output.
func Boards(maxCheckers int) []board.Board {
	out := make([]board.Board, 0, Count(maxCheckers))
	Walk(maxCheckers, func(b board.Board) error {
		out = append(out, b)
		return nil
	})
	return out
}
