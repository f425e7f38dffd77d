package attack

import (
	"cmp"
	"slices"
)

// NumMap is a sparse probability mass over discrete keys. A closed
// distribution sums to 1; partial reports may sum to less.
type NumMap[K cmp.Ordered] map[K]float64

func (m NumMap[K]) Add(k K, v float64) { m[k] += v }

// Merge adds other into m pointwise.
func (m NumMap[K]) Merge(other NumMap[K]) {
	for k, v := range other {
		m[k] += v
	}
}

// Scaled returns a copy with every mass multiplied by f.
func (m NumMap[K]) Scaled(f float64) NumMap[K] {
	out := make(NumMap[K], len(m))
	for k, v := range m {
		out[k] = v * f
	}
	return out
}

func (m NumMap[K]) Total() float64 {
	t := 0.0
	for _, k := range m.Keys() {
		t += m[k]
	}
	return t
}

// Keys returns the keys in ascending order.
func (m NumMap[K]) Keys() []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Rekey maps every key through fn, summing masses that collide.
func Rekey[K, J cmp.Ordered](m NumMap[K], fn func(K) J) NumMap[J] {
	out := make(NumMap[J], len(m))
	for _, k := range m.Keys() {
		out.Add(fn(k), m[k])
	}
	return out
}

// Mean is the expected key of an integer distribution.
func Mean(m NumMap[int]) float64 {
	e := 0.0
	for _, k := range m.Keys() {
		e += float64(k) * m[k]
	}
	return e
}
