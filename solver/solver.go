// Package solver computes the exact expected number of rolls needed to bear
// off every checker, playing each roll to minimize that expectation.
//
// expectation(empty) = 0
// expectation(b)     = sum over rolls r of p(r) * (1 + min over b' in moves(b, r) of expectation(b'))
//
// Every move lowers the pip count, so the recursion only ever visits
// positions with fewer pips than its caller and needs no cycle guard.
package solver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/domino14/bearoff/board"
	"github.com/domino14/bearoff/dice"
	"github.com/domino14/bearoff/memo"
	"github.com/domino14/bearoff/movegen"
	"github.com/domino14/bearoff/prob"
	"github.com/domino14/bearoff/ratio"
)

var (
	ErrNoMoves = errors.New("solver: no reachable position for roll")
	ErrCycle   = errors.New("solver: position revisited during its own evaluation")
)

// Solver is safe for concurrent use. P is the numeric type of the
// expectations and K the comparable key it folds into while averaging.
type Solver[K prob.Valued[P], P prob.Keyed[K, P]] struct {
	table   *memo.Table[P]
	flight  singleflight.Group
	threads int
	verify  bool
	nodes   atomic.Uint64
}

type Option[K prob.Valued[P], P prob.Keyed[K, P]] func(*Solver[K, P])

// WithThreads sets how many goroutines SolveAll and the root of Expectation
// may use. One means fully sequential.
func WithThreads[K prob.Valued[P], P prob.Keyed[K, P]](n int) Option[K, P] {
	return func(s *Solver[K, P]) {
		if n < 1 {
			n = runtime.NumCPU()
		}
		s.threads = n
	}
}

// WithTable makes the solver use (and fill) an existing table, for example
// one preloaded from disk.
func WithTable[K prob.Valued[P], P prob.Keyed[K, P]](t *memo.Table[P]) Option[K, P] {
	return func(s *Solver[K, P]) {
		s.table = t
	}
}

// WithVerify turns on a check that no position is revisited while it is
// still being evaluated. It costs a map per evaluation path.
func WithVerify[K prob.Valued[P], P prob.Keyed[K, P]](v bool) Option[K, P] {
	return func(s *Solver[K, P]) {
		s.verify = v
	}
}

func New[K prob.Valued[P], P prob.Keyed[K, P]](opts ...Option[K, P]) *Solver[K, P] {
	s := &Solver[K, P]{threads: 1}
	for _, o := range opts {
		o(s)
	}
	if s.table == nil {
		s.table = memo.New[P](memo.DefaultShards)
		if s.threads == 1 {
			s.table.SetSingleThreadedMode()
		}
	}
	if s.threads > 1 && !s.table.Threaded() {
		s.table.SetMultiThreadedMode()
	}
	var p P
	s.table.Store(board.Empty, p.Zero())
	return s
}

// Exact is a solver over arbitrary-precision rationals.
type Exact = Solver[ratio.Key, ratio.Ratio]

func NewExact(opts ...Option[ratio.Key, ratio.Ratio]) *Exact {
	return New[ratio.Key, ratio.Ratio](opts...)
}

// NewSmall returns a solver over 64-bit rationals. It panics with
// ratio.ErrOverflow on positions whose exact answer does not fit.
func NewSmall(opts ...Option[ratio.Small, ratio.Small]) *Solver[ratio.Small, ratio.Small] {
	return New[ratio.Small, ratio.Small](opts...)
}

func (s *Solver[K, P]) Table() *memo.Table[P] {
	return s.table
}

func (s *Solver[K, P]) Threads() int {
	return s.threads
}

// Nodes is the number of positions this solver has evaluated itself.
func (s *Solver[K, P]) Nodes() uint64 {
	return s.nodes.Load()
}

// Expectation returns the expected number of rolls to bear off every
// checker from b under optimal play.
func (s *Solver[K, P]) Expectation(b board.Board) P {
	var path map[board.Board]struct{}
	if s.verify {
		path = make(map[board.Board]struct{})
	}
	return s.expectation(b, path, s.threads > 1)
}

func (s *Solver[K, P]) expectation(b board.Board, path map[board.Board]struct{}, fanOut bool) P {
	if b.IsEmpty() {
		var p P
		return p.Zero()
	}
	if v, ok := s.table.Lookup(b); ok {
		return v
	}
	if path != nil {
		if _, ok := path[b]; ok {
			panic(fmt.Errorf("%w: %v", ErrCycle, b))
		}
		path[b] = struct{}{}
		defer delete(path, b)
	}
	v, _, _ := s.flight.Do(b.String(), func() (any, error) {
		// another goroutine may have finished b between our lookup and
		// joining the flight.
		if v, ok := s.table.Lookup(b); ok {
			return v, nil
		}
		v := s.evaluate(b, path, fanOut)
		s.table.Store(b, v)
		return v, nil
	})
	return v.(P)
}

// evaluate averages over the 21 rolls. No normalization happens: the roll
// weights are built to add up to exactly one.
func (s *Solver[K, P]) evaluate(b board.Board, path map[board.Board]struct{}, fanOut bool) P {
	s.nodes.Add(1)
	outcomes := dice.Outcomes()
	bests := make([]P, len(outcomes))
	if fanOut {
		g := errgroup.Group{}
		g.SetLimit(s.threads)
		for i, o := range outcomes {
			var branch map[board.Board]struct{}
			if path != nil {
				branch = clonePath(path)
			}
			g.Go(func() error {
				_, bests[i] = s.best(b, o.Dice, branch)
				return nil
			})
		}
		g.Wait()
	} else {
		for i, o := range outcomes {
			_, bests[i] = s.best(b, o.Dice, path)
		}
	}

	var p P
	one := p.One()
	dist := prob.New[K, P]()
	for i, o := range outcomes {
		dist.Append(bests[i].Add(one).Key(), dice.Probability[P](o))
	}
	return prob.Mean(dist)
}

func clonePath(path map[board.Board]struct{}) map[board.Board]struct{} {
	c := make(map[board.Board]struct{}, len(path))
	for k := range path {
		c[k] = struct{}{}
	}
	return c
}

type candidate[P any] struct {
	b board.Board
	v P
}

func (s *Solver[K, P]) best(b board.Board, ds []int, path map[board.Board]struct{}) (board.Board, P) {
	moves := movegen.ListMoves(b, ds)
	if len(moves) == 0 {
		panic(fmt.Errorf("%w: %v with %v", ErrNoMoves, b, ds))
	}
	cands := lo.Map(moves, func(m board.Board, _ int) candidate[P] {
		return candidate[P]{b: m, v: s.expectation(m, path, false)}
	})
	c := lo.MinBy(cands, func(a, b candidate[P]) bool {
		return a.v.Cmp(b.v) < 0
	})
	return c.b, c.v
}

// Best returns the position b should be played to with the given dice, and
// the expectation from there. Ties go to the lowest board in Less order.
func (s *Solver[K, P]) Best(b board.Board, ds []int) (board.Board, P, error) {
	if err := dice.Validate(ds); err != nil {
		var p P
		return board.Board{}, p.Zero(), err
	}
	var path map[board.Board]struct{}
	if s.verify {
		path = make(map[board.Board]struct{})
	}
	nb, v := s.best(b, ds, path)
	return nb, v, nil
}

// SolveAll fills the table for every board given, spreading the work over
// the solver's threads. Boards are independent, so the order does not
// matter for the results.
func (s *Solver[K, P]) SolveAll(ctx context.Context, boards []board.Board) error {
	ts := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.threads)
	var done atomic.Uint64
	for _, b := range boards {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var path map[board.Board]struct{}
			if s.verify {
				path = make(map[board.Board]struct{})
			}
			s.expectation(b, path, false)
			if n := done.Add(1); n%10000 == 0 {
				log.Debug().Uint64("solved", n).Int("of", len(boards)).Msg("solve-progress")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Info().Int("boards", len(boards)).
		Uint64("nodes", s.nodes.Load()).
		Int("threads", s.threads).
		Dur("elapsed", time.Since(ts)).
		Msg("solve-all-done")
	return nil
}
