// Package ratio contains exact non-negative rational numbers. Ratio is backed
// by arbitrary-precision integers; Small is a fixed-precision twin that is
// handy for validating logic on tiny inputs before running the real thing.
package ratio

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
)

var (
	ErrDivisionByZero  = errors.New("ratio: division by zero")
	ErrZeroDenominator = errors.New("ratio: zero denominator")
	ErrNegative        = errors.New("ratio: negative result")
	ErrOverflow        = errors.New("ratio: fixed-precision overflow")
	ErrMalformed       = errors.New("ratio: malformed fraction")
)

// Ratio is an immutable non-negative fraction kept in lowest terms.
// The zero value is 0/1. Operations never modify their operands; the
// *Assign variants replace the receiver's value.
type Ratio struct {
	v *big.Rat
}

var bigOne = big.NewInt(1)

func (r Ratio) rat() *big.Rat {
	if r.v == nil {
		return new(big.Rat)
	}
	return r.v
}

func wrap(v *big.Rat) Ratio {
	if v.Sign() < 0 {
		panic(ErrNegative)
	}
	return Ratio{v: v}
}

// New returns num/den. It panics if den is zero.
func New(num, den uint64) Ratio {
	if den == 0 {
		panic(ErrZeroDenominator)
	}
	n := new(big.Int).SetUint64(num)
	d := new(big.Int).SetUint64(den)
	return Ratio{v: new(big.Rat).SetFrac(n, d)}
}

// NewBig returns num/den for arbitrary-size operands.
func NewBig(num, den *big.Int) (Ratio, error) {
	if den.Sign() == 0 {
		return Ratio{}, ErrZeroDenominator
	}
	if num.Sign() < 0 || den.Sign() < 0 {
		return Ratio{}, ErrNegative
	}
	return Ratio{v: new(big.Rat).SetFrac(num, den)}, nil
}

// FromUint64 returns n/1.
func FromUint64(n uint64) Ratio {
	return Ratio{v: new(big.Rat).SetInt(new(big.Int).SetUint64(n))}
}

// FromFloat converts a finite, non-negative float exactly, by decomposing it
// into an integer mantissa and a binary exponent. Negative zero is zero.
func FromFloat(f float64) (Ratio, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Ratio{}, false
	}
	if f == 0 {
		return Ratio{}, true
	}
	if f < 0 {
		return Ratio{}, false
	}
	mantissa, exponent := decompose(f)
	num := new(big.Int).SetUint64(mantissa)
	if exponent >= 0 {
		num.Lsh(num, uint(exponent))
		return Ratio{v: new(big.Rat).SetInt(num)}, true
	}
	den := new(big.Int).Lsh(bigOne, uint(-exponent))
	return Ratio{v: new(big.Rat).SetFrac(num, den)}, true
}

// decompose splits a positive finite float into mantissa * 2^exponent.
func decompose(f float64) (uint64, int) {
	bits := math.Float64bits(f)
	exp := int((bits >> 52) & 0x7ff)
	frac := bits & (1<<52 - 1)
	if exp == 0 {
		// subnormal
		return frac, -1074
	}
	return frac | 1<<52, exp - 1075
}

func Zero() Ratio { return Ratio{} }
func One() Ratio { return FromUint64(1) }

// The numeric policy methods below let Ratio plug into generic code.

func (Ratio) Zero() Ratio { return Zero() }
func (Ratio) One() Ratio { return One() }
func (Ratio) FromUint64(n uint64) Ratio { return FromUint64(n) }
func (r Ratio) Key() Key { return Key(r.String()) }
func (r Ratio) IsZero() bool { return r.rat().Sign() == 0 }
func (r Ratio) Cmp(o Ratio) int { return r.rat().Cmp(o.rat()) }
func (r Ratio) Equal(o Ratio) bool { return r.Cmp(o) == 0 }
func (r Ratio) Less(o Ratio) bool { return r.Cmp(o) < 0 }
func (r Ratio) Num() *big.Int { return new(big.Int).Set(r.rat().Num()) }
func (r Ratio) Denom() *big.Int { return new(big.Int).Set(r.rat().Denom()) }
func (r Ratio) FloatString(prec int) string { return r.rat().FloatString(prec) }

func (r Ratio) Float64() float64 {
	f, _ := r.rat().Float64()
	return f
}

func (r Ratio) Add(o Ratio) Ratio {
	return Ratio{v: new(big.Rat).Add(r.rat(), o.rat())}
}

// Sub panics with ErrNegative if o > r.
func (r Ratio) Sub(o Ratio) Ratio {
	return wrap(new(big.Rat).Sub(r.rat(), o.rat()))
}

func (r Ratio) Mul(o Ratio) Ratio {
	return Ratio{v: new(big.Rat).Mul(r.rat(), o.rat())}
}

// Quo panics with ErrDivisionByZero if o is zero.
func (r Ratio) Quo(o Ratio) Ratio {
	if o.IsZero() {
		panic(ErrDivisionByZero)
	}
	return Ratio{v: new(big.Rat).Quo(r.rat(), o.rat())}
}

// Rem returns r - o*floor(r/o). It panics with ErrDivisionByZero if o is zero.
func (r Ratio) Rem(o Ratio) Ratio {
	q := r.Quo(o).rat()
	floor := new(big.Int).Quo(q.Num(), q.Denom())
	prod := new(big.Rat).Mul(o.rat(), new(big.Rat).SetInt(floor))
	return wrap(prod.Sub(r.rat(), prod))
}

func (r *Ratio) AddAssign(o Ratio) { *r = r.Add(o) }
func (r *Ratio) SubAssign(o Ratio) { *r = r.Sub(o) }
func (r *Ratio) MulAssign(o Ratio) { *r = r.Mul(o) }
func (r *Ratio) QuoAssign(o Ratio) { *r = r.Quo(o) }
func (r *Ratio) RemAssign(o Ratio) { *r = r.Rem(o) }

// String returns "num/den", or just "num" when the denominator is 1.
func (r Ratio) String() string {
	v := r.rat()
	if v.IsInt() {
		return v.Num().String()
	}
	return v.Num().String() + "/" + v.Denom().String()
}

// Parse reads the form written by String. The text is split on the first
// slash; a missing denominator means 1.
func Parse(s string) (Ratio, error) {
	s = strings.TrimSpace(s)
	numStr, denStr, found := strings.Cut(s, "/")
	if !found {
		denStr = "1"
	}
	num, ok := new(big.Int).SetString(strings.TrimSpace(numStr), 10)
	if !ok {
		return Ratio{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	den, ok := new(big.Int).SetString(strings.TrimSpace(denStr), 10)
	if !ok {
		return Ratio{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	r, err := NewBig(num, den)
	if err != nil {
		return Ratio{}, fmt.Errorf("%w: %q: %w", ErrMalformed, s, err)
	}
	return r, nil
}

// MustParse is like Parse but panics on error. Meant for tests and tables.
func MustParse(s string) Ratio {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Key is the canonical text form of a Ratio. Unlike Ratio it is comparable,
// so it can be used as a map key.
type Key string

func (k Key) Value() Ratio { return MustParse(string(k)) }
