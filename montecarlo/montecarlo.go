// Package montecarlo plays bearoff races with random dice and compares the
// average number of rolls against the exact expectation.
package montecarlo

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/bearoff/board"
	"github.com/domino14/bearoff/dice"
	"github.com/domino14/bearoff/ratio"
	"github.com/domino14/bearoff/stats"
)

const (
	DefaultIterations = 10000
	DefaultConfidence = 99.0
	// workers fold their statistics into the shared one this often
	mergeEvery = 500
)

type Result struct {
	Policy     string
	Iterations int
	Mean       float64
	Stdev      float64
	StdErr     float64
	Low        float64
	High       float64
	MinRolls   int
	MaxRolls   int
	Confidence float64

	// Exact is only set when the policy knows the true expectation.
	Exact    ratio.Ratio
	HasExact bool
}

// Consistent reports whether the exact expectation lies inside the
// confidence interval. Without an exact value it is always true.
func (r Result) Consistent() bool {
	if !r.HasExact {
		return true
	}
	e := r.Exact.Float64()
	return e >= r.Low && e <= r.High
}

func (r Result) String() string {
	s := fmt.Sprintf("%s: %d games, mean %.4f rolls (%.1f%% interval %.4f-%.4f), stdev %.4f, range %d-%d",
		r.Policy, r.Iterations, r.Mean, r.Confidence, r.Low, r.High, r.Stdev, r.MinRolls, r.MaxRolls)
	if r.HasExact {
		s += fmt.Sprintf(", exact %s (%.4f)", r.Exact, r.Exact.Float64())
	}
	return s
}

type Simulator struct {
	policy     Policy
	threads    int
	iterations int
	confidence float64

	// stop early once the interval half-width drops below this; 0 never
	tolerance float64
	roll      func() dice.Outcome
}

func NewSimulator(p Policy) *Simulator {
	return &Simulator{
		policy:     p,
		threads:    1,
		iterations: DefaultIterations,
		confidence: DefaultConfidence,
		roll:       dice.Roll,
	}
}

func (s *Simulator) SetThreads(n int) {
	if n < 1 {
		n = runtime.NumCPU()
	}
	s.threads = n
}

func (s *Simulator) SetIterations(n int) {
	if n < 1 {
		n = DefaultIterations
	}
	s.iterations = n
}

// SetConfidence takes a percentage, e.g. 99.
func (s *Simulator) SetConfidence(c float64) {
	if c <= 0 || c >= 100 {
		c = DefaultConfidence
	}
	s.confidence = c
}

func (s *Simulator) SetTolerance(t float64) {
	s.tolerance = t
}

// PlayGame plays b out with random rolls and returns how many rolls it took.
func (s *Simulator) PlayGame(b board.Board) (int, error) {
	rolls := 0
	for !b.IsEmpty() {
		o := s.roll()
		nb, err := s.policy.Play(b, o.Dice)
		if err != nil {
			return rolls, err
		}
		if nb.Pips() >= b.Pips() {
			return rolls, fmt.Errorf("policy %s made no progress from %v with %v",
				s.policy.Name(), b, o)
		}
		b = nb
		rolls++
	}
	return rolls, nil
}

// Run simulates games from b until the iteration count is reached, the
// tolerance is met, or ctx is done. A cancelled run returns ctx's error.
func (s *Simulator) Run(ctx context.Context, b board.Board) (Result, error) {
	ts := time.Now()
	z := stats.ZVal(s.confidence)
	if o, ok := s.policy.(*Optimal); ok && s.threads > 1 && !o.s.Table().Threaded() {
		// workers share the solver's table
		o.s.Table().SetMultiThreadedMode()
	}

	var mu sync.Mutex
	var total stats.Statistic
	var started atomic.Int64
	var stop atomic.Bool

	merge := func(local *stats.Statistic) {
		mu.Lock()
		defer mu.Unlock()
		total.Merge(*local)
		*local = stats.Statistic{}
		if s.tolerance > 0 && total.Iterations() > 1 &&
			z*total.StandardError() < s.tolerance {
			stop.Store(true)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for t := 0; t < s.threads; t++ {
		g.Go(func() error {
			var local stats.Statistic
			for !stop.Load() && started.Add(1) <= int64(s.iterations) {
				if err := ctx.Err(); err != nil {
					return err
				}
				n, err := s.PlayGame(b)
				if err != nil {
					return err
				}
				local.Push(float64(n))
				if local.Iterations() == mergeEvery {
					merge(&local)
				}
			}
			merge(&local)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	low, high := total.Interval(z)
	r := Result{
		Policy:     s.policy.Name(),
		Iterations: total.Iterations(),
		Mean:       total.Mean(),
		Stdev:      total.Stdev(),
		StdErr:     total.StandardError(),
		Low:        low,
		High:       high,
		MinRolls:   int(total.Min()),
		MaxRolls:   int(total.Max()),
		Confidence: s.confidence,
	}
	if o, ok := s.policy.(*Optimal); ok {
		r.Exact = o.Expectation(b)
		r.HasExact = true
	}
	log.Info().Str("board", b.String()).
		Str("policy", r.Policy).
		Int("iterations", r.Iterations).
		Float64("mean", r.Mean).
		Float64("stderr", r.StdErr).
		Dur("elapsed", time.Since(ts)).
		Msg("sim-done")
	return r, nil
}
