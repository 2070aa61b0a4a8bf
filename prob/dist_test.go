package prob

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/bearoff/ratio"
)

func small(n, d uint64) ratio.Small { return ratio.NewSmall(n, d) }

func TestNormalize(t *testing.T) {
	is := is.New(t)
	dist := New[int, ratio.Small]()
	dist.Append(1, small(1, 1))
	dist.Append(2, small(2, 1))
	dist.Append(3, small(1, 1))

	want := New[int, ratio.Small]()
	want.Append(1, small(1, 4))
	want.Append(2, small(1, 2))
	want.Append(3, small(1, 4))

	n := dist.Normalized()
	is.True(n.Equal(want))
	is.Equal(n.Sum(), small(1, 1))
	// Normalized leaves its receiver alone.
	is.Equal(dist.Sum(), small(4, 1))

	dist.Normalize()
	is.True(dist.Equal(want))
	// already normalized: no-op
	dist.Normalize()
	is.True(dist.Equal(want))
}

func TestAppendAccumulates(t *testing.T) {
	is := is.New(t)
	dist := New[string, ratio.Small]()
	dist.Append("a", small(1, 3))
	dist.Append("a", small(1, 6))
	w, ok := dist.Weight("a")
	is.True(ok)
	is.Equal(w, small(1, 2))
	_, ok = dist.Weight("b")
	is.True(!ok)
	is.Equal(dist.Len(), 1)
	is.Equal(dist.Keys(), []string{"a"})
}

func TestEmpty(t *testing.T) {
	is := is.New(t)
	dist := New[ratio.Key, ratio.Ratio]()
	is.True(dist.Sum().IsZero())
	is.True(Mean(dist).IsZero())
	dist.Normalize()
	is.Equal(dist.Len(), 0)
}

func TestMean(t *testing.T) {
	is := is.New(t)
	dist := New[ratio.Key, ratio.Ratio]()
	dist.Append(ratio.New(1, 1).Key(), ratio.New(1, 4))
	dist.Append(ratio.New(2, 1).Key(), ratio.New(1, 4))
	dist.Append(ratio.New(3, 1).Key(), ratio.New(1, 2))
	is.True(Mean(dist).Equal(ratio.New(9, 4)))

	// no implicit normalization
	dist.Append(ratio.New(3, 1).Key(), ratio.New(1, 2))
	is.True(Mean(dist).Equal(ratio.New(15, 4)))
	is.True(Mean(dist.Normalized()).Equal(ratio.New(15, 6)))
}

func TestMergeCommutativeAssociative(t *testing.T) {
	is := is.New(t)
	a := New[ratio.Small, ratio.Small]()
	a.Append(small(1, 1), small(1, 3))
	a.Append(small(2, 1), small(1, 6))
	b := New[ratio.Small, ratio.Small]()
	b.Append(small(2, 1), small(1, 6))
	c := New[ratio.Small, ratio.Small]()
	c.Append(small(5, 1), small(1, 12))
	c.Append(small(1, 1), small(1, 12))
	c.Append(small(7, 2), small(1, 6))

	is.True(Merge(a, b).Equal(Merge(b, a)))
	is.True(Merge(Merge(a, b), c).Equal(Merge(a, Merge(b, c))))

	m := Merge(a, b)
	w, _ := m.Weight(small(2, 1))
	is.Equal(w, small(1, 3))
	// inputs untouched
	w, _ = a.Weight(small(2, 1))
	is.Equal(w, small(1, 6))
	is.Equal(b.Len(), 1)

	all := Merge(Merge(a, b), c)
	is.Equal(all.Sum(), small(1, 1))
	// 1*(5/12) + 2*(1/3) + 5*(1/12) + 7/2*(1/6)
	is.Equal(Mean(all), small(25, 12))
}
