package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/kailas-cloud/recodex/internal/domain"
	"github.com/kailas-cloud/recodex/internal/domain/catalog"
	"github.com/kailas-cloud/recodex/internal/domain/product"
	"github.com/kailas-cloud/recodex/internal/domain/similarity"
)

// --- Helpers ---

var modes = []similarity.Mode{similarity.Eager, similarity.Lazy}

func buildIndex(t *testing.T, products []product.Product) *catalog.Index {
	t.Helper()
	idx, err := catalog.Build(products)
	if err != nil {
		t.Fatalf("catalog.Build: %v", err)
	}
	return idx
}

func buildEngine(t *testing.T, products []product.Product, mode similarity.Mode) *Engine {
	t.Helper()
	e, err := Build(context.Background(), buildIndex(t, products), EngineOptions{Mode: mode, Workers: 2})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return e
}

func shoeCatalog() []product.Product {
	return []product.Product{
		product.Reconstruct(1, "Runner", "shoes", 50, "red shoe", nil),
		product.Reconstruct(2, "Cap", "hats", 15, "red hat", nil),
		product.Reconstruct(3, "Trail", "shoes", 80, "blue shoe", nil),
	}
}

func storeCatalog() []product.Product {
	return []product.Product{
		product.Reconstruct(10, "Running Shoes", "footwear", 89.99, "sports running shoes fitness", nil),
		product.Reconstruct(11, "Yoga Mat", "fitness", 25, "yoga fitness mat exercise", nil),
		product.Reconstruct(12, "Coffee Maker", "kitchen", 49, "coffee kitchen appliance", nil),
		product.Reconstruct(13, "Espresso Beans", "grocery", 14, "coffee beans espresso", nil),
		product.Reconstruct(14, "Trail Shoes", "footwear", 120, "running shoes trail outdoor", nil),
		product.Reconstruct(15, "Tent", "outdoor", 199, "camping tent outdoor", nil),
		product.Reconstruct(16, "Gift Card", "misc", 50, "", nil),
		product.Reconstruct(17, "Dumbbells", "fitness", 60, "fitness weights exercise", nil),
	}
}

func ids(products []product.Product) []int {
	out := make([]int, len(products))
	for i := range products {
		out[i] = products[i].ID()
	}
	return out
}

// --- Build ---

func TestBuild_NilIndex(t *testing.T) {
	_, err := Build(context.Background(), nil, EngineOptions{})
	if !errors.Is(err, domain.ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestBuild_UnknownMode(t *testing.T) {
	_, err := Build(context.Background(), buildIndex(t, shoeCatalog()), EngineOptions{Mode: "bogus"})
	if err == nil {
		t.Fatal("expected error for unknown similarity mode")
	}
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e, err := Build(ctx, buildIndex(t, shoeCatalog()), EngineOptions{Mode: similarity.Eager})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if e != nil {
		t.Error("expected no engine on failed build")
	}
}

// --- Scenarios ---

func TestRecommend_Scenario_RedShoe(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			e := buildEngine(t, shoeCatalog(), mode)

			got, err := e.Recommend([]int{1}, 3)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			// 2 and 3 tie (each shares one term of equal idf), catalog order breaks the tie
			want := []int{2, 3}
			if fmt.Sprint(ids(got)) != fmt.Sprint(want) {
				t.Errorf("got %v, want %v", ids(got), want)
			}
		})
	}
}

func TestRecommend_Scenario_EmptyHistory(t *testing.T) {
	e := buildEngine(t, shoeCatalog(), similarity.Eager)
	for _, history := range [][]int{nil, {}} {
		_, err := e.Recommend(history, 3)
		if !errors.Is(err, domain.ErrEmptyHistory) {
			t.Errorf("history %v: expected ErrEmptyHistory, got %v", history, err)
		}
	}
}

func TestRecommend_Scenario_UnknownProduct(t *testing.T) {
	e := buildEngine(t, shoeCatalog(), similarity.Eager)

	got, err := e.Recommend([]int{999}, 3)
	if got != nil {
		t.Errorf("expected no partial result, got %v", ids(got))
	}
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	var pnf *domain.ProductNotFoundError
	if !errors.As(err, &pnf) {
		t.Fatalf("expected *ProductNotFoundError, got %T", err)
	}
	if pnf.ID != 999 {
		t.Errorf("expected id 999, got %d", pnf.ID)
	}
}

func TestRecommend_FirstUnknownIDIsReported(t *testing.T) {
	e := buildEngine(t, shoeCatalog(), similarity.Eager)

	_, err := e.Recommend([]int{1, 500, 2, 600}, 3)
	var pnf *domain.ProductNotFoundError
	if !errors.As(err, &pnf) {
		t.Fatalf("expected *ProductNotFoundError, got %v", err)
	}
	if pnf.ID != 500 {
		t.Errorf("expected first unresolved id 500, got %d", pnf.ID)
	}
}

func TestRecommend_Scenario_AllViewed(t *testing.T) {
	e := buildEngine(t, shoeCatalog(), similarity.Eager)

	got, err := e.Recommend([]int{3, 1, 2, 1}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", ids(got))
	}
}

func TestRecommend_Scenario_EmptyCatalog(t *testing.T) {
	_, err := catalog.Build(nil)
	if !errors.Is(err, domain.ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
}

// --- Ranking ---

func TestRecommend_MaxAggregation(t *testing.T) {
	e := buildEngine(t, storeCatalog(), similarity.Eager)

	// One strong match (coffee) must surface even though it is unrelated to the rest.
	got, err := e.Recommend([]int{13, 10, 11}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, id := range ids(got) {
		if id == 12 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected coffee maker (12) in %v", ids(got))
	}
}

func TestRecommend_KBounds(t *testing.T) {
	e := buildEngine(t, storeCatalog(), similarity.Eager)

	tests := []struct {
		name string
		k    int
		want int
	}{
		{"default when zero", 0, DefaultK},
		{"default when negative", -2, DefaultK},
		{"one", 1, 1},
		{"fewer candidates than k", 50, 7},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.Recommend([]int{10}, tc.k)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tc.want {
				t.Errorf("expected %d results, got %d", tc.want, len(got))
			}
		})
	}
}

func TestRank_ScoresAreMaxSimilarity(t *testing.T) {
	e := buildEngine(t, storeCatalog(), similarity.Eager)
	history := []int{10, 12}

	ranked, err := e.Rank(history, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h0, _ := e.Catalog().FindPosition(10)
	h1, _ := e.Catalog().FindPosition(12)
	for _, r := range ranked {
		want := max(e.Similarity(r.Position, h0), e.Similarity(r.Position, h1))
		if r.Score != want {
			t.Errorf("product %d: score %f, want %f", r.Product.ID(), r.Score, want)
		}
		if r.Product.ID() != e.Catalog().Product(r.Position).ID() {
			t.Errorf("product/position mismatch at %d", r.Position)
		}
	}
}

// --- Properties ---

func TestRecommend_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	words := []string{"red", "blue", "shoe", "hat", "wool", "cotton", "summer", "winter", "kids", "sport"}

	products := make([]product.Product, 40)
	for i := range products {
		n := rng.Intn(4)
		tags := make([]string, n)
		for j := range tags {
			tags[j] = words[rng.Intn(len(words))]
		}
		products[i] = product.Reconstruct(100+i, "", "", 1, strings.Join(tags, " "), nil)
	}

	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			e := buildEngine(t, products, mode)

			for trial := 0; trial < 50; trial++ {
				history := make([]int, 1+rng.Intn(6))
				distinct := make(map[int]struct{})
				for i := range history {
					history[i] = 100 + rng.Intn(len(products))
					distinct[history[i]] = struct{}{}
				}
				k := 1 + rng.Intn(8)

				ranked, err := e.Rank(history, k)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}

				// size bound
				if want := min(k, len(products)-len(distinct)); len(ranked) != want {
					t.Fatalf("size: got %d, want %d", len(ranked), want)
				}
				for i, r := range ranked {
					// exclusion
					if _, ok := distinct[r.Product.ID()]; ok {
						t.Fatalf("history product %d recommended", r.Product.ID())
					}
					if i == 0 {
						continue
					}
					prev := ranked[i-1]
					// monotonicity
					if prev.Score < r.Score {
						t.Fatalf("scores not descending: %f before %f", prev.Score, r.Score)
					}
					// stability
					if prev.Score == r.Score && prev.Position > r.Position {
						t.Fatalf("tie order broken: position %d before %d", prev.Position, r.Position)
					}
				}

				// determinism
				again, _ := e.Rank(history, k)
				for i := range ranked {
					if again[i].Position != ranked[i].Position || again[i].Score != ranked[i].Score {
						t.Fatalf("non-deterministic result at %d", i)
					}
				}
			}
		})
	}
}

func TestRecommend_EagerAndLazyAgree(t *testing.T) {
	eager := buildEngine(t, storeCatalog(), similarity.Eager)
	lazy := buildEngine(t, storeCatalog(), similarity.Lazy)

	for _, history := range [][]int{{10}, {12, 15}, {16}, {11, 17, 10}} {
		a, err := eager.Recommend(history, 5)
		if err != nil {
			t.Fatalf("eager: %v", err)
		}
		b, err := lazy.Recommend(history, 5)
		if err != nil {
			t.Fatalf("lazy: %v", err)
		}
		if fmt.Sprint(ids(a)) != fmt.Sprint(ids(b)) {
			t.Errorf("history %v: eager %v, lazy %v", history, ids(a), ids(b))
		}
	}
}

func TestRecommend_ConcurrentQueries(t *testing.T) {
	e := buildEngine(t, storeCatalog(), similarity.Eager)
	want, err := e.Recommend([]int{10, 13}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		go func() {
			got, err := e.Recommend([]int{13, 10}, 3)
			if err == nil && fmt.Sprint(ids(got)) != fmt.Sprint(ids(want)) {
				err = fmt.Errorf("got %v, want %v", ids(got), ids(want))
			}
			errs <- err
		}()
	}
	for i := 0; i < 16; i++ {
		if err := <-errs; err != nil {
			t.Error(err)
		}
	}
}
