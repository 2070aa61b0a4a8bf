// Package stats keeps running statistics over simulated games.
package stats

import "math"

const Epsilon = 1e-6

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Statistic is a running mean and variance (Welford's algorithm). The zero
// value is ready to use.
type Statistic struct {
	n    int
	mean float64
	m2   float64
	last float64
	min  float64
	max  float64
}

func (s *Statistic) Push(val float64) {
	s.last = val
	if s.n == 0 || val < s.min {
		s.min = val
	}
	if s.n == 0 || val > s.max {
		s.max = val
	}
	s.n++
	delta := val - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (val - s.mean)
}

// Merge folds o into s, as if every value pushed to o had been pushed to s.
// Workers keep their own Statistic and merge at the end.
func (s *Statistic) Merge(o Statistic) {
	if o.n == 0 {
		return
	}
	if s.n == 0 {
		*s = o
		return
	}
	n := s.n + o.n
	delta := o.mean - s.mean
	s.m2 += o.m2 + delta*delta*float64(s.n)*float64(o.n)/float64(n)
	s.mean += delta * float64(o.n) / float64(n)
	s.n = n
	s.min = math.Min(s.min, o.min)
	s.max = math.Max(s.max, o.max)
	s.last = o.last
}

func (s *Statistic) Mean() float64 {
	return s.mean
}

func (s *Statistic) Variance() float64 {
	if s.n <= 1 {
		return 0.0
	}
	return s.m2 / float64(s.n-1)
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

func (s *Statistic) Last() float64 { return s.last }
func (s *Statistic) Min() float64  { return s.min }
func (s *Statistic) Max() float64  { return s.max }

func (s *Statistic) StandardError() float64 {
	if s.n == 0 {
		return 0.0
	}
	return math.Sqrt(s.Variance() / float64(s.n))
}

// Interval returns mean -/+ z standard errors.
func (s *Statistic) Interval(z float64) (float64, float64) {
	e := z * s.StandardError()
	return s.mean - e, s.mean + e
}

func (s *Statistic) Iterations() int {
	return s.n
}
