package ratio

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/matryer/is"
)

func TestFromFloat(t *testing.T) {
	is := is.New(t)
	r, ok := FromFloat(0.25)
	is.True(ok)
	is.True(r.Equal(New(1, 4)))
	is.Equal(r.String(), "1/4")

	r, ok = FromFloat(6)
	is.True(ok)
	is.Equal(r.String(), "6")

	r, ok = FromFloat(0.1)
	is.True(ok)
	// 0.1 is not exactly representable; the conversion must be exact anyway.
	is.Equal(r.Denom().String(), new(big.Int).Lsh(big.NewInt(1), 55).String())
	is.Equal(r.Float64(), 0.1)

	r, ok = FromFloat(math.SmallestNonzeroFloat64)
	is.True(ok)
	is.Equal(r.Num().String(), "1")

	r, ok = FromFloat(math.Copysign(0, -1))
	is.True(ok)
	is.True(r.IsZero())

	for _, f := range []float64{-0.5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, ok = FromFloat(f)
		is.True(!ok)
	}
}

func TestArithmetic(t *testing.T) {
	is := is.New(t)
	a := New(1, 3)
	b := New(5, 6)
	c := New(7, 4)

	is.True(a.Add(b).Equal(b.Add(a)))
	is.True(a.Add(b).Add(c).Equal(a.Add(b.Add(c))))
	is.True(a.Mul(b).Equal(New(5, 18)))
	is.True(b.Sub(a).Equal(New(1, 2)))
	is.True(a.Quo(b).Equal(New(2, 5)))
	is.True(b.Quo(b).Equal(One()))
	is.True(c.Rem(a).Equal(New(1, 12)))
	is.True(New(3, 1).Rem(New(3, 2)).IsZero())

	// operands are untouched
	is.Equal(a.String(), "1/3")
	is.Equal(b.String(), "5/6")
}

func TestAssignVariants(t *testing.T) {
	is := is.New(t)
	r := New(1, 2)
	alias := r
	r.AddAssign(New(1, 4))
	is.Equal(r.String(), "3/4")
	is.Equal(alias.String(), "1/2")
	r.MulAssign(FromUint64(4))
	is.Equal(r.String(), "3")
	r.SubAssign(New(1, 2))
	is.Equal(r.String(), "5/2")
	r.QuoAssign(New(5, 3))
	is.Equal(r.String(), "3/2")
	r.RemAssign(One())
	is.Equal(r.String(), "1/2")
}

func TestZeroValue(t *testing.T) {
	is := is.New(t)
	var r Ratio
	is.True(r.IsZero())
	is.True(r.Equal(Zero()))
	is.Equal(r.String(), "0")
	is.True(r.Add(One()).Equal(One()))
}

func TestOrdering(t *testing.T) {
	is := is.New(t)
	is.Equal(New(1, 3).Cmp(New(1, 2)), -1)
	is.Equal(New(2, 4).Cmp(New(1, 2)), 0)
	is.Equal(New(3, 4).Cmp(New(1, 2)), 1)
	is.True(New(1, 3).Less(New(1, 2)))
	is.Equal(New(2, 4).Key(), New(1, 2).Key())
}

func expectPanic(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		rec := recover()
		err, ok := rec.(error)
		if !ok || !errors.Is(err, want) {
			t.Fatalf("expected panic %v, got %v", want, rec)
		}
	}()
	fn()
}

func TestFailures(t *testing.T) {
	expectPanic(t, ErrDivisionByZero, func() { One().Quo(Zero()) })
	expectPanic(t, ErrDivisionByZero, func() { One().Rem(Zero()) })
	expectPanic(t, ErrZeroDenominator, func() { New(1, 0) })
	expectPanic(t, ErrNegative, func() { New(1, 3).Sub(New(1, 2)) })
}

func TestParse(t *testing.T) {
	is := is.New(t)
	type tc struct {
		in  string
		out string
		err error
	}
	cases := []tc{
		{"1/4", "1/4", nil},
		{"2/8", "1/4", nil},
		{"7", "7", nil},
		{" 3 / 9 ", "1/3", nil},
		{"0", "0", nil},
		{"1/0", "", ErrMalformed},
		{"a/2", "", ErrMalformed},
		{"1/2/3", "", ErrMalformed},
		{"-1/2", "", ErrMalformed},
		{"", "", ErrMalformed},
	}
	for _, c := range cases {
		r, err := Parse(c.in)
		if c.err != nil {
			is.True(errors.Is(err, c.err))
			continue
		}
		is.NoErr(err)
		is.Equal(r.String(), c.out)
	}
	long := "123456789012345678901234567891/7"
	is.Equal(MustParse(long).String(), long)
	is.True(Key("5/10").Value().Equal(New(1, 2)))
}
