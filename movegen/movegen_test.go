package movegen

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/bearoff/board"
	"github.com/domino14/bearoff/dice"
)

func b(counts ...int) board.Board {
	return board.MustNew(counts...)
}

func TestListMovesOneChecker(t *testing.T) {
	is := is.New(t)
	start := b(0, 0, 0, 1, 0, 0)
	is.Equal(ListMoves(start, []int{1}), []board.Board{b(0, 0, 1, 0, 0, 0)})
	is.Equal(ListMoves(start, []int{4}), []board.Board{board.Empty})
	is.Equal(ListMoves(start, []int{5}), []board.Board{board.Empty})
	is.Equal(ListMoves(start, []int{1, 2}), []board.Board{b(1, 0, 0, 0, 0, 0)})
}

func TestListMovesTwoCheckers(t *testing.T) {
	is := is.New(t)
	start := b(0, 0, 1, 1, 0, 0)
	is.Equal(ListMoves(start, []int{1}), []board.Board{
		b(0, 0, 2, 0, 0, 0),
		b(0, 1, 0, 1, 0, 0),
	})
	// no checker on 5 or 6: the highest checker comes off.
	is.Equal(ListMoves(start, []int{5}), []board.Board{b(0, 0, 1, 0, 0, 0)})
	is.Equal(ListMoves(start, []int{1, 3}), []board.Board{
		b(0, 0, 1, 0, 0, 0),
		b(1, 1, 0, 0, 0, 0),
	})
	is.Equal(ListMoves(start, []int{4, 3}), []board.Board{
		board.Empty,
		b(1, 0, 0, 0, 0, 0),
	})
}

func TestListMovesDoubles(t *testing.T) {
	is := is.New(t)
	start := b(0, 0, 0, 0, 1, 3)
	is.Equal(ListMoves(start, []int{6, 6, 6, 6}), []board.Board{board.Empty})
	is.Equal(ListMoves(start, []int{5, 5, 5, 5}), []board.Board{b(3, 0, 0, 0, 0, 0)})
	is.Equal(ListMoves(start, []int{3, 3, 3, 3}), []board.Board{
		b(0, 0, 0, 0, 1, 1),
		b(0, 0, 2, 0, 1, 0),
		b(0, 1, 1, 0, 0, 1),
		b(0, 1, 3, 0, 0, 0),
	})
	is.Equal(ListMoves(b(1, 2, 0, 0, 0, 0), []int{5, 5, 5, 5}), []board.Board{board.Empty})
}

func TestListMovesOrderIndependent(t *testing.T) {
	is := is.New(t)
	start := b(2, 2, 2, 2, 2, 2)
	is.Equal(ListMoves(start, []int{3, 4}), ListMoves(start, []int{4, 3}))
	is.Equal(len(ListMoves(start, []int{3, 4})), 12)
}

func TestListMovesProperties(t *testing.T) {
	is := is.New(t)
	starts := []board.Board{
		b(0, 0, 0, 1, 0, 0), b(0, 0, 1, 1, 0, 0), b(3, 0, 2, 0, 1, 4),
		b(1, 1, 1, 1, 1, 1), b(0, 0, 0, 0, 0, 2), b(5, 0, 0, 0, 0, 0),
	}
	for _, start := range starts {
		for _, o := range dice.Outcomes() {
			moves := ListMoves(start, o.Dice)
			is.True(len(moves) > 0)
			seen := map[board.Board]bool{}
			for i, m := range moves {
				is.True(!seen[m])
				seen[m] = true
				if i > 0 {
					is.True(moves[i-1].Less(m))
				}
				is.True(m.Checkers() <= start.Checkers())
				is.True(m.Pips() < start.Pips())
			}
		}
	}
}

// A single die either moves a checker from a point at least as high as the
// die or, when there is none, takes one off the highest point.
func TestSingleDie(t *testing.T) {
	is := is.New(t)
	start := b(2, 0, 1, 0, 3, 0)
	for d := 1; d <= 6; d++ {
		for _, m := range ListMoves(start, []int{d}) {
			from := 0
			for p := 1; p <= board.NumPoints; p++ {
				if m.Count(p) < start.Count(p) {
					from = p
				}
			}
			if start.Highest() >= d {
				is.True(from >= d)
			} else {
				is.Equal(from, start.Highest())
			}
			is.Equal(start.Pips()-m.Pips(), min(d, from))
		}
	}
}

func TestGenerateValidates(t *testing.T) {
	is := is.New(t)
	_, err := Generate(board.Empty, nil)
	is.True(errors.Is(err, dice.ErrNoDice))
	_, err = Generate(board.Empty, []int{7})
	is.True(errors.Is(err, dice.ErrInvalidDie))
	moves, err := Generate(b(1, 0, 0, 0, 0, 0), []int{2, 2, 2, 2})
	is.NoErr(err)
	is.Equal(moves, []board.Board{board.Empty})
}

func TestBearOffFallback(t *testing.T) {
	is := is.New(t)
	is.Equal(BearOffFallback(b(0, 0, 1, 0, 2, 0), []int{6, 6}), b(0, 0, 1, 0, 0, 0))
	is.Equal(BearOffFallback(b(1, 0, 0, 0, 0, 0), []int{5, 5, 5}), board.Empty)
	is.Equal(BearOffFallback(board.Empty, []int{6}), board.Empty)
	is.Equal(BearOffFallback(b(0, 1, 1, 0, 0, 0), nil), b(0, 1, 1, 0, 0, 0))
	// only the highest point gives up a checker
	is.Equal(BearOffFallback(b(4, 0, 0, 0, 1, 0), []int{6}), b(4, 0, 0, 0, 0, 0))
}

func BenchmarkGenerateMixed(bm *testing.B) {
	start := b(2, 2, 2, 2, 2, 2)
	for i := 0; i < bm.N; i++ {
		ListMoves(start, []int{3, 4})
	}
}

func BenchmarkGenerateDouble(bm *testing.B) {
	start := b(1, 2, 0, 0, 0, 0)
	for i := 0; i < bm.N; i++ {
		ListMoves(start, []int{5, 5, 5, 5})
	}
}
