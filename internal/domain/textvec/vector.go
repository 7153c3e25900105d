package textvec

import (
	"math"
	"sort"
)

// Vector is a sparse term-weight vector. Term indices are strictly increasing.
type Vector struct {
	terms   []int
	weights []float64
}

// NewVector builds a Vector from a term->weight map, dropping zero weights.
func NewVector(m map[int]float64) Vector {
	terms := make([]int, 0, len(m))
	for t, w := range m {
		if w != 0 {
			terms = append(terms, t)
		}
	}
	sort.Ints(terms)
	weights := make([]float64, len(terms))
	for i, t := range terms {
		weights[i] = m[t]
	}
	return Vector{terms: terms, weights: weights}
}

// Len returns the number of non-zero entries.
func (v Vector) Len() int { return len(v.terms) }

// IsZero reports whether every weight is zero.
func (v Vector) IsZero() bool { return len(v.terms) == 0 }

// Weight returns the weight of term, or 0 when absent.
func (v Vector) Weight(term int) float64 {
	i := sort.SearchInts(v.terms, term)
	if i < len(v.terms) && v.terms[i] == term {
		return v.weights[i]
	}
	return 0
}

// Each calls fn for every non-zero entry in term order.
func (v Vector) Each(fn func(term int, weight float64)) {
	for i, t := range v.terms {
		fn(t, v.weights[i])
	}
}

// Norm returns the Euclidean length.
func (v Vector) Norm() float64 {
	var sum float64
	for _, w := range v.weights {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Normalize returns a unit-length copy. A zero vector is returned unchanged.
func (v Vector) Normalize() Vector {
	n := v.Norm()
	if n == 0 {
		return v
	}
	weights := make([]float64, len(v.weights))
	for i, w := range v.weights {
		weights[i] = w / n
	}
	return Vector{terms: v.terms, weights: weights}
}

// Dot returns the inner product of a and b.
func Dot(a, b Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.terms) && j < len(b.terms) {
		switch {
		case a.terms[i] == b.terms[j]:
			sum += a.weights[i] * b.weights[j]
			i++
			j++
		case a.terms[i] < b.terms[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Cosine returns the cosine similarity of a and b, 0 if either is a zero vector.
func Cosine(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}
