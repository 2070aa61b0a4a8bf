// Package prob contains a weighted distribution over outcome keys. It is
// generic over the weight type, so the same code runs on exact big
// rationals and on small fixed-precision ones.
package prob

// Number is the numeric policy a weight type has to provide. Zero, One and
// FromUint64 ignore their receiver, so they can be called on a zero value.
type Number[T any] interface {
	Zero() T
	One() T
	FromUint64(n uint64) T
	Add(o T) T
	Mul(o T) T
	Quo(o T) T
	Cmp(o T) int
}

// Valued is a comparable key that converts to the weight type. Mean needs
// its keys to be Valued.
type Valued[P any] interface {
	comparable
	Value() P
}

// Keyed is a number that can be turned into a Valued key of type K.
type Keyed[K Valued[P], P any] interface {
	Number[P]
	Key() K
}

// Distribution maps an outcome key to its accumulated weight.
type Distribution[K comparable, P Number[P]] struct {
	dist map[K]P
}

func New[K comparable, P Number[P]]() *Distribution[K, P] {
	return &Distribution[K, P]{dist: make(map[K]P)}
}

func zero[P Number[P]]() P {
	var p P
	return p.Zero()
}

// Append adds weight p to the accumulator for x, creating it if needed.
func (d *Distribution[K, P]) Append(x K, p P) {
	if q, ok := d.dist[x]; ok {
		d.dist[x] = q.Add(p)
		return
	}
	d.dist[x] = p
}

func (d *Distribution[K, P]) Len() int {
	return len(d.dist)
}

func (d *Distribution[K, P]) Weight(x K) (P, bool) {
	p, ok := d.dist[x]
	return p, ok
}

// Keys returns the keys in no particular order.
func (d *Distribution[K, P]) Keys() []K {
	keys := make([]K, 0, len(d.dist))
	for k := range d.dist {
		keys = append(keys, k)
	}
	return keys
}

// Sum returns the total weight. An empty distribution sums to zero.
func (d *Distribution[K, P]) Sum() P {
	s := zero[P]()
	for _, p := range d.dist {
		s = s.Add(p)
	}
	return s
}

// Normalize scales every weight so that they sum to one. It does nothing if
// they already do, or if the distribution is empty. A non-empty distribution
// whose weights sum to zero makes the weight type's division fail.
func (d *Distribution[K, P]) Normalize() {
	if len(d.dist) == 0 {
		return
	}
	s := d.Sum()
	if s.Cmp(s.One()) == 0 {
		return
	}
	for k, p := range d.dist {
		d.dist[k] = p.Quo(s)
	}
}

// Normalized returns a normalized copy, leaving d untouched.
func (d *Distribution[K, P]) Normalized() *Distribution[K, P] {
	c := d.Clone()
	c.Normalize()
	return c
}

func (d *Distribution[K, P]) Clone() *Distribution[K, P] {
	c := &Distribution[K, P]{dist: make(map[K]P, len(d.dist))}
	for k, p := range d.dist {
		c.dist[k] = p
	}
	return c
}

// Equal reports whether both distributions hold the same keys with equal
// weights.
func (d *Distribution[K, P]) Equal(o *Distribution[K, P]) bool {
	if len(d.dist) != len(o.dist) {
		return false
	}
	for k, p := range d.dist {
		q, ok := o.dist[k]
		if !ok || p.Cmp(q) != 0 {
			return false
		}
	}
	return true
}

// Merge returns a distribution whose weight for every key is the sum of the
// weights in a and b. The smaller of the two is folded into a copy of the
// larger one; neither input is modified.
func Merge[K comparable, P Number[P]](a, b *Distribution[K, P]) *Distribution[K, P] {
	if a.Len() < b.Len() {
		a, b = b, a
	}
	ret := a.Clone()
	for k, p := range b.dist {
		ret.Append(k, p)
	}
	return ret
}

// Mean returns the sum of key*weight. It does not normalize first; callers
// that want a probability mean must make sure the weights sum to one.
func Mean[K Valued[P], P Number[P]](d *Distribution[K, P]) P {
	s := zero[P]()
	for k, p := range d.dist {
		s = s.Add(k.Value().Mul(p))
	}
	return s
}
