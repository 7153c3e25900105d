package textvec

import (
	"math"
	"sort"
)

// Vocabulary is the fixed term set of a fitted corpus with smoothed IDF weights.
// Term indices follow lexical order so that fitting is deterministic.
type Vocabulary struct {
	index map[string]int
	terms []string
	idf   []float64
}

// Size returns the number of distinct terms.
func (v *Vocabulary) Size() int { return len(v.terms) }

// Lookup returns the index of term.
func (v *Vocabulary) Lookup(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Term returns the term at index i.
func (v *Vocabulary) Term(i int) string { return v.terms[i] }

// IDF returns the inverse document frequency of the term at index i.
func (v *Vocabulary) IDF(i int) float64 { return v.idf[i] }

// Fit builds a vocabulary over docs.
// idf(t) = ln((1+n) / (1+df(t))) + 1, where n is the number of documents.
func Fit(docs []string) *Vocabulary {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v := &Vocabulary{
		index: make(map[string]int, len(terms)),
		terms: terms,
		idf:   make([]float64, len(terms)),
	}
	for i, t := range terms {
		v.index[t] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return v
}

// Transform maps doc onto the vocabulary as an L2-normalised TF-IDF vector.
// Terms outside the vocabulary are ignored.
func (v *Vocabulary) Transform(doc string) Vector {
	counts := make(map[int]float64)
	for _, tok := range Tokenize(doc) {
		if i, ok := v.index[tok]; ok {
			counts[i]++
		}
	}
	for i, tf := range counts {
		counts[i] = tf * v.idf[i]
	}
	return NewVector(counts).Normalize()
}

// FitTransform fits a vocabulary over docs and returns one vector per doc, in order.
func FitTransform(docs []string) (*Vocabulary, []Vector) {
	vocab := Fit(docs)
	vecs := make([]Vector, len(docs))
	for i, doc := range docs {
		vecs[i] = vocab.Transform(doc)
	}
	return vocab, vecs
}
