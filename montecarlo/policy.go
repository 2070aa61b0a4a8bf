package montecarlo

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/domino14/bearoff/board"
	"github.com/domino14/bearoff/movegen"
	"github.com/domino14/bearoff/ratio"
	"github.com/domino14/bearoff/solver"
)

// A Policy chooses where to play a roll.
type Policy interface {
	Name() string
	Play(b board.Board, ds []int) (board.Board, error)
}

// Optimal plays every roll to the position with the lowest exact
// expectation.
type Optimal struct {
	s *solver.Exact
}

func NewOptimal(s *solver.Exact) *Optimal {
	return &Optimal{s: s}
}

func (o *Optimal) Name() string { return "optimal" }

func (o *Optimal) Play(b board.Board, ds []int) (board.Board, error) {
	nb, _, err := o.s.Best(b, ds)
	return nb, err
}

func (o *Optimal) Expectation(b board.Board) ratio.Ratio {
	return o.s.Expectation(b)
}

// Greedy takes off as many checkers as it can, then leaves the fewest pips.
type Greedy struct{}

func (Greedy) Name() string { return "greedy" }

func (Greedy) Play(b board.Board, ds []int) (board.Board, error) {
	moves, err := movegen.Generate(b, ds)
	if err != nil {
		return board.Board{}, err
	}
	if len(moves) == 0 {
		return board.Board{}, fmt.Errorf("%w: %v with %v", solver.ErrNoMoves, b, ds)
	}
	return lo.MinBy(moves, func(a, b board.Board) bool {
		if a.Checkers() != b.Checkers() {
			return a.Checkers() < b.Checkers()
		}
		return a.Pips() < b.Pips()
	}), nil
}

// PolicyByName returns the named policy. Only the optimal policy needs a
// solver.
func PolicyByName(name string, s *solver.Exact) (Policy, error) {
	switch name {
	case "optimal", "":
		return NewOptimal(s), nil
	case "greedy":
		return Greedy{}, nil
	}
	return nil, fmt.Errorf("unknown policy %q", name)
}
