// Package catalog loads the product catalog from CSV files or a Valkey/Redis store.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/recodex/internal/db"
	"github.com/kailas-cloud/recodex/internal/domain"
	"github.com/kailas-cloud/recodex/internal/domain/product"
)

// store is the consumer interface for the catalog repository (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
}

// Repo persists the catalog as one hash per product plus an ordered id list.
type Repo struct {
	store  store
	prefix string
}

// New creates a catalog repository. An empty prefix selects domain.KeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// Save writes every product hash in one round trip, then the order key.
// Readers never observe an order list that points at missing hashes.
// Hashes of products dropped since the previous Save are deleted last.
func (r *Repo) Save(ctx context.Context, products []product.Product) error {
	previous, err := r.loadOrder(ctx)
	if err != nil && !errors.Is(err, db.ErrKeyNotFound) {
		return fmt.Errorf("read previous order: %w", err)
	}

	items := make([]db.HashSetItem, len(products))
	order := make([]int, len(products))
	keep := make(map[int]struct{}, len(products))
	for i, p := range products {
		fields, err := productToHash(p)
		if err != nil {
			return fmt.Errorf("product %d: %w", p.ID(), err)
		}
		items[i] = db.HashSetItem{Key: r.productKey(p.ID()), Fields: fields}
		order[i] = p.ID()
		keep[p.ID()] = struct{}{}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset products: %w", err)
	}

	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	if err := r.store.Set(ctx, r.orderKey(), data); err != nil {
		return fmt.Errorf("set catalog order: %w", err)
	}

	for _, id := range previous {
		if _, ok := keep[id]; ok {
			continue
		}
		if err := r.store.Del(ctx, r.productKey(id)); err != nil {
			return fmt.Errorf("delete dropped product %d: %w", id, err)
		}
	}
	return nil
}

// Load reads the catalog in saved order.
// A missing order key yields domain.ErrEmptyCatalog.
func (r *Repo) Load(ctx context.Context) ([]product.Product, error) {
	order, err := r.loadOrder(ctx)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("catalog order %s: %w", r.orderKey(), domain.ErrEmptyCatalog)
		}
		return nil, err
	}
	if len(order) == 0 {
		return nil, nil
	}

	keys := make([]string, len(order))
	for i, id := range order {
		keys[i] = r.productKey(id)
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall products: %w", err)
	}
	if len(hashes) != len(order) {
		return nil, fmt.Errorf("hgetall products: got %d results for %d keys", len(hashes), len(order))
	}

	products := make([]product.Product, len(order))
	for i, m := range hashes {
		if len(m) == 0 {
			return nil, fmt.Errorf("product %d listed in catalog order has no hash", order[i])
		}
		p, err := productFromHash(m)
		if err != nil {
			return nil, err
		}
		if p.ID() != order[i] {
			return nil, fmt.Errorf("hash %s holds product %d", keys[i], p.ID())
		}
		products[i] = p
	}
	return products, nil
}

// loadOrder returns the saved id list; db.ErrKeyNotFound when nothing was saved.
func (r *Repo) loadOrder(ctx context.Context) ([]int, error) {
	data, err := r.store.Get(ctx, r.orderKey())
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get catalog order: %w", err)
	}

	var order []int
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("unmarshal catalog order: %w", err)
	}
	return order, nil
}

func (r *Repo) orderKey() string {
	return r.prefix + "catalog:order"
}

func (r *Repo) productKey(id int) string {
	return r.prefix + "product:" + strconv.Itoa(id)
}
