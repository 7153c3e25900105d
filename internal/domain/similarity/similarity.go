// Package similarity provides pairwise cosine similarity over catalog vectors.
package similarity

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/recodex/internal/domain/textvec"
)

// Mode selects how similarities are materialised.
type Mode string

const (
	// Eager computes the full N×N matrix up front.
	Eager Mode = "eager"
	// Lazy computes each pair on demand from the vectors.
	Lazy Mode = "lazy"
)

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	return m == Eager || m == Lazy
}

// Matrix is a read-only symmetric similarity matrix with a unit diagonal.
// Vectors passed to the constructors must be L2-normalised.
type Matrix interface {
	At(i, j int) float64
	Len() int
}

// New builds a Matrix in the given mode.
func New(ctx context.Context, m Mode, vecs []textvec.Vector, workers int) (Matrix, error) {
	switch m {
	case Eager, "":
		return NewDense(ctx, vecs, workers)
	case Lazy:
		return NewLazy(vecs), nil
	default:
		return nil, fmt.Errorf("unknown similarity mode %q", m)
	}
}

// Dense stores every pair in row-major order.
type Dense struct {
	n      int
	values []float64
}

// NewDense computes all pairs, spreading rows over at most workers goroutines
// (GOMAXPROCS when workers <= 0). Returns ctx.Err() if cancelled mid-build.
func NewDense(ctx context.Context, vecs []textvec.Vector, workers int) (*Dense, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	n := len(vecs)
	d := &Dense{n: n, values: make([]float64, n*n)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < n; i++ {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d.fillRow(vecs, i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build similarity matrix: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build similarity matrix: %w", err)
	}
	return d, nil
}

// fillRow writes cells (i, j) and (j, i) for j >= i. Each cell is owned by exactly
// one row, so rows can be filled concurrently.
func (d *Dense) fillRow(vecs []textvec.Vector, i int) {
	d.values[i*d.n+i] = 1
	for j := i + 1; j < d.n; j++ {
		s := clamp(textvec.Dot(vecs[i], vecs[j]))
		d.values[i*d.n+j] = s
		d.values[j*d.n+i] = s
	}
}

// At returns the similarity of i and j.
func (d *Dense) At(i, j int) float64 { return d.values[i*d.n+j] }

// Len returns the matrix dimension.
func (d *Dense) Len() int { return d.n }

// LazyMatrix computes similarities on each call. It trades repeated dot products
// for O(N) memory.
type LazyMatrix struct {
	vecs []textvec.Vector
}

// NewLazy wraps vecs without precomputation.
func NewLazy(vecs []textvec.Vector) *LazyMatrix {
	return &LazyMatrix{vecs: vecs}
}

// At returns the similarity of i and j.
func (l *LazyMatrix) At(i, j int) float64 {
	if i == j {
		return 1
	}
	return clamp(textvec.Dot(l.vecs[i], l.vecs[j]))
}

// Len returns the matrix dimension.
func (l *LazyMatrix) Len() int { return len(l.vecs) }

// clamp keeps rounding noise of normalised dot products inside [0, 1].
func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
