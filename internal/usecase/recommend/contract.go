package recommend

import "context"

// Cache stores ranked product ids per (catalog, history, k) query.
// Implementations must treat failures as misses.
type Cache interface {
	Lookup(ctx context.Context, fingerprint string, history []int, k int) ([]int, bool)
	Store(ctx context.Context, fingerprint string, history []int, k int, ids []int)
}
