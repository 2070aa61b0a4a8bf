package ratio

import (
	"math/bits"
	"strconv"
)

// Small is a non-negative fraction with 64-bit numerator and denominator.
// It is comparable, so it is its own map key. Arithmetic panics with
// ErrOverflow rather than wrapping. The zero value is 0.
type Small struct {
	num, den uint64
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func mulChecked(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		panic(ErrOverflow)
	}
	return lo
}

func addChecked(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		panic(ErrOverflow)
	}
	return sum
}

// NewSmall returns num/den in lowest terms. It panics if den is zero.
func NewSmall(num, den uint64) Small {
	if den == 0 {
		panic(ErrZeroDenominator)
	}
	if num == 0 {
		return Small{0, 1}
	}
	g := gcd(num, den)
	return Small{num / g, den / g}
}

func (s Small) norm() Small {
	if s.den == 0 {
		return Small{0, 1}
	}
	return s
}

func (Small) Zero() Small { return Small{0, 1} }
func (Small) One() Small { return Small{1, 1} }
func (Small) FromUint64(n uint64) Small { return Small{n, 1} }

func (s Small) Key() Small { return s.norm() }
func (s Small) Value() Small { return s.norm() }
func (s Small) Num() uint64 { return s.norm().num }
func (s Small) Denom() uint64 { return s.norm().den }
func (s Small) IsZero() bool { return s.num == 0 }

func (s Small) Float64() float64 {
	s = s.norm()
	return float64(s.num) / float64(s.den)
}

func (s Small) Add(o Small) Small {
	s, o = s.norm(), o.norm()
	g := gcd(s.den, o.den)
	// lcm(s.den, o.den) = s.den/g * o.den
	l := mulChecked(s.den/g, o.den)
	n := addChecked(mulChecked(s.num, o.den/g), mulChecked(o.num, s.den/g))
	return NewSmall(n, l)
}

// Sub panics with ErrNegative if o > s.
func (s Small) Sub(o Small) Small {
	if s.Cmp(o) < 0 {
		panic(ErrNegative)
	}
	s, o = s.norm(), o.norm()
	g := gcd(s.den, o.den)
	l := mulChecked(s.den/g, o.den)
	n := mulChecked(s.num, o.den/g) - mulChecked(o.num, s.den/g)
	return NewSmall(n, l)
}

func (s Small) Mul(o Small) Small {
	s, o = s.norm(), o.norm()
	if s.num == 0 || o.num == 0 {
		return Small{0, 1}
	}
	// cross-reduce first so the products stay as small as possible
	g1 := gcd(s.num, o.den)
	g2 := gcd(o.num, s.den)
	n := mulChecked(s.num/g1, o.num/g2)
	d := mulChecked(s.den/g2, o.den/g1)
	return NewSmall(n, d)
}

// Quo panics with ErrDivisionByZero if o is zero.
func (s Small) Quo(o Small) Small {
	o = o.norm()
	if o.num == 0 {
		panic(ErrDivisionByZero)
	}
	return s.Mul(Small{o.den, o.num})
}

// Rem returns s - o*floor(s/o).
func (s Small) Rem(o Small) Small {
	q := s.Quo(o)
	floor := q.num / q.den
	return s.Sub(o.Mul(Small{floor, 1}))
}

func (s Small) Cmp(o Small) int {
	s, o = s.norm(), o.norm()
	// compare s.num*o.den with o.num*s.den in 128 bits
	ahi, alo := bits.Mul64(s.num, o.den)
	bhi, blo := bits.Mul64(o.num, s.den)
	switch {
	case ahi < bhi || (ahi == bhi && alo < blo):
		return -1
	case ahi == bhi && alo == blo:
		return 0
	}
	return 1
}

func (s Small) Equal(o Small) bool { return s.Cmp(o) == 0 }

func (s *Small) AddAssign(o Small) { *s = s.Add(o) }
func (s *Small) SubAssign(o Small) { *s = s.Sub(o) }
func (s *Small) MulAssign(o Small) { *s = s.Mul(o) }
func (s *Small) QuoAssign(o Small) { *s = s.Quo(o) }
func (s *Small) RemAssign(o Small) { *s = s.Rem(o) }

func (s Small) String() string {
	s = s.norm()
	if s.den == 1 {
		return strconv.FormatUint(s.num, 10)
	}
	return strconv.FormatUint(s.num, 10) + "/" + strconv.FormatUint(s.den, 10)
}

// Big converts to an arbitrary-precision Ratio.
func (s Small) Big() Ratio {
	s = s.norm()
	return New(s.num, s.den)
}
