package movegen

import "github.com/domino14/bearoff/board"

// BearOffFallback plays dice that cannot move any checker normally. Each
// die takes a checker from the highest occupied point. Such a die is always
// larger than that point, so the checker goes off and the extra pips are
// wasted; the landing point is only filled when the die does not overshoot.
// Once the board is empty the remaining dice are ignored.
func BearOffFallback(b board.Board, ds []int) board.Board {
	for _, d := range ds {
		j := b.Highest()
		if j == 0 {
			break
		}
		b = step(b, j, d)
	}
	return b
}
