// Package movegen lists every position reachable by playing a roll in a
// bearoff race. It does not choose between them; that is the solver's job.
package movegen

import (
	"slices"
	"sort"

	"github.com/samber/lo"

	"github.com/domino14/bearoff/board"
	"github.com/domino14/bearoff/dice"
)

// partial is a position part of the way through a roll. The remaining dice
// are kept sorted so two orderings that reach the same position with the
// same dice left collapse to one queue entry.
type partial struct {
	b    board.Board
	dice [dice.MaxDice]uint8
	n    uint8
}

func newPartial(b board.Board, ds []int) partial {
	p := partial{b: b, n: uint8(len(ds))}
	for i, d := range ds {
		p.dice[i] = uint8(d)
	}
	slices.Sort(p.dice[:p.n])
	return p
}

// without returns a copy of p with the die at index i removed.
func (p partial) without(i int, b board.Board) partial {
	q := partial{b: b, n: p.n - 1}
	copy(q.dice[:], p.dice[:i])
	copy(q.dice[i:], p.dice[i+1:p.n])
	return q
}

func (p partial) remaining() []int {
	ds := make([]int, p.n)
	for i := range ds {
		ds[i] = int(p.dice[i])
	}
	return ds
}

// Generate validates the roll and returns every board reachable by playing
// it, sorted and without duplicates.
func Generate(b board.Board, ds []int) ([]board.Board, error) {
	if err := dice.Validate(ds); err != nil {
		return nil, err
	}
	return ListMoves(b, ds), nil
}

// ListMoves is Generate without validation. Every die must be 1..6 and
// there must be between one and four of them.
//
// Each die moves one checker from a point at least as high as the die,
// bearing it off on an exact roll. All dice are played if at all possible.
// A position where no remaining die can move a checker is saturated and
// finishes through BearOffFallback.
func ListMoves(b board.Board, ds []int) []board.Board {
	out := make(map[board.Board]struct{})
	states := []partial{newPartial(b, ds)}
	queued := make(map[partial]struct{})
	var saturated []partial

	for len(states) > 0 {
		var next []partial
		clear(queued)
		for _, st := range states {
			moved := false
			for i := 0; i < int(st.n); i++ {
				d := int(st.dice[i])
				if i > 0 && st.dice[i-1] == st.dice[i] {
					// same die value as the previous one; same children.
					continue
				}
				for j := d; j <= board.NumPoints; j++ {
					if st.b[j-1] == 0 {
						continue
					}
					moved = true
					nb := step(st.b, j, d)
					if st.n == 1 {
						out[nb] = struct{}{}
						continue
					}
					child := st.without(i, nb)
					if _, ok := queued[child]; !ok {
						queued[child] = struct{}{}
						next = append(next, child)
					}
				}
			}
			if !moved {
				saturated = append(saturated, st)
			}
		}
		states = next
	}

	for _, st := range saturated {
		out[BearOffFallback(st.b, st.remaining())] = struct{}{}
	}

	boards := lo.Keys(out)
	sort.Slice(boards, func(i, j int) bool { return boards[i].Less(boards[j]) })
	return boards
}

// step moves one checker from point j by d pips. The checker lands on
// point j-d, or is borne off if that is zero or less.
func step(b board.Board, j, d int) board.Board {
	b[j-1]--
	if land := j - d; land > 0 {
		b[land-1]++
	}
	return b
}
