package stats

import (
	"testing"

	"github.com/matryer/is"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		rolls []int
		mean  float64
		stdev float64
	}
	cases := []tc{
		{[]int{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638},
		{[]int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891},
		{[]int{1}, 1, 0},
		{[]int{}, 0, 0},
		{[]int{1, 1}, 1, 0},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, r := range c.rolls {
			s.Push(float64(r))
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
		is.Equal(s.Iterations(), len(c.rolls))
	}
}

func TestMerge(t *testing.T) {
	is := is.New(t)
	vals := []int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}
	for split := 0; split <= len(vals); split++ {
		var a, b Statistic
		for _, v := range vals[:split] {
			a.Push(float64(v))
		}
		for _, v := range vals[split:] {
			b.Push(float64(v))
		}
		a.Merge(b)
		is.Equal(a.Iterations(), len(vals))
		is.True(FuzzyEqual(a.Mean(), 47.2))
		is.True(FuzzyEqual(a.Stdev(), 36.937785531891))
		is.Equal(a.Min(), 10.0)
		is.Equal(a.Max(), 124.0)
	}
}

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(FuzzyEqual(ZVal(95), 1.959963984540054))
	is.True(FuzzyEqual(ZVal(99), 2.5758293035489004))
	lo, hi := (&Statistic{}).Interval(ZVal(95))
	is.Equal(lo, 0.0)
	is.Equal(hi, 0.0)
}
