package catalog

import (
	"context"
	"testing"

	"github.com/kailas-cloud/recodex/internal/db"
	"github.com/kailas-cloud/recodex/internal/domain/product"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	kv     map[string][]byte
	hashes map[string]map[string]string

	hsetMultiFn    func(ctx context.Context, items []db.HashSetItem) error
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	getFn          func(ctx context.Context, key string) ([]byte, error)
	delFn          func(ctx context.Context, key string) error

	deleted []string
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	v, ok := m.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) Set(_ context.Context, key string, value []byte) error {
	m.kv[key] = value
	return nil
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	for _, item := range items {
		m.hashes[item.Key] = item.Fields
	}
	return nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		if h, ok := m.hashes[k]; ok {
			out[i] = h
		} else {
			out[i] = map[string]string{}
		}
	}
	return out, nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	delete(m.hashes, key)
	delete(m.kv, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{kv: map[string][]byte{}, hashes: map[string]map[string]string{}}
	return New(ms, ""), ms
}

func testProducts(t *testing.T) []product.Product {
	t.Helper()
	rows := []struct {
		id    int
		name  string
		price float64
		tags  string
		attrs map[string]string
	}{
		{3, "Red Shoe", 49.9, "red shoe", map[string]string{"image": "shoe.png"}},
		{1, "Red Hat", 15, "red hat", nil},
		{2, "Blue Shoe", 52.5, "blue shoe", nil},
	}
	out := make([]product.Product, len(rows))
	for i, r := range rows {
		p, err := product.New(r.id, r.name, "apparel", r.price, r.tags, r.attrs)
		if err != nil {
			t.Fatalf("product.New: %v", err)
		}
		out[i] = p
	}
	return out
}
