package recommend

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/kailas-cloud/recodex/internal/domain"
	"github.com/kailas-cloud/recodex/internal/domain/catalog"
	"github.com/kailas-cloud/recodex/internal/domain/product"
	"github.com/kailas-cloud/recodex/internal/domain/similarity"
)

// DefaultK is the number of recommendations returned when k is not positive.
const DefaultK = 3

// EngineOptions tunes similarity construction.
type EngineOptions struct {
	Mode    similarity.Mode // eager (default) or lazy
	Workers int             // parallelism for eager builds, 0 = GOMAXPROCS
}

// Scored is a ranked candidate with its affinity to the history.
type Scored struct {
	Product  product.Product
	Position int
	Score    float64
}

// Engine ranks unseen products by tag similarity to a browsing history.
// It is immutable after Build and safe for concurrent use.
type Engine struct {
	index  *catalog.Index
	matrix similarity.Matrix
}

// Build derives the similarity structure from idx. Either the whole engine is
// returned or an error; there is no partially built state.
func Build(ctx context.Context, idx *catalog.Index, opts EngineOptions) (*Engine, error) {
	if idx == nil || idx.Len() == 0 {
		return nil, domain.ErrEmptyCatalog
	}
	m, err := similarity.New(ctx, opts.Mode, idx.Vectors(), opts.Workers)
	if err != nil {
		return nil, err
	}
	return &Engine{index: idx, matrix: m}, nil
}

// Catalog returns the index the engine was built from.
func (e *Engine) Catalog() *catalog.Index { return e.index }

// Similarity returns the cosine similarity of the products at positions i and j.
func (e *Engine) Similarity(i, j int) float64 { return e.matrix.At(i, j) }

// Recommend returns up to k products most similar to any product in history,
// best first. See Rank.
func (e *Engine) Recommend(history []int, k int) ([]product.Product, error) {
	ranked, err := e.Rank(history, k)
	if err != nil {
		return nil, err
	}
	out := make([]product.Product, len(ranked))
	for i := range ranked {
		out[i] = ranked[i].Product
	}
	return out, nil
}

// Rank scores every catalog product not in history by its maximum similarity to
// a history product and returns the top k (DefaultK when k <= 0).
//
// Errors: domain.ErrEmptyHistory for an empty history; *domain.ProductNotFoundError
// for the first id missing from the catalog. An all-covering history yields an
// empty result. Ties keep catalog order.
func (e *Engine) Rank(history []int, k int) ([]Scored, error) {
	if len(history) == 0 {
		return nil, domain.ErrEmptyHistory
	}
	if k <= 0 {
		k = DefaultK
	}

	n := e.index.Len()
	seen := make([]bool, n)
	positions := make([]int, 0, len(history))
	for _, id := range history {
		pos, ok := e.index.FindPosition(id)
		if !ok {
			return nil, fmt.Errorf("resolve history: %w", domain.NewProductNotFound(id))
		}
		if seen[pos] {
			continue
		}
		seen[pos] = true
		positions = append(positions, pos)
	}

	candidates := make([]Scored, 0, n-len(positions))
	for o := 0; o < n; o++ {
		if seen[o] {
			continue
		}
		best := 0.0
		for _, h := range positions {
			if s := e.matrix.At(o, h); s > best {
				best = s
			}
		}
		candidates = append(candidates, Scored{Position: o, Score: best})
	}

	// candidates are in ascending position order; a stable sort keeps it among ties
	slices.SortStableFunc(candidates, func(a, b Scored) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	for i := range candidates {
		candidates[i].Product = e.index.Product(candidates[i].Position)
	}
	return candidates, nil
}
