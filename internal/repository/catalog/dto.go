package catalog

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/recodex/internal/domain/product"
)

// productToHash converts a Product to a map for HSET.
func productToHash(p product.Product) (map[string]string, error) {
	m := map[string]string{
		"id":       strconv.Itoa(p.ID()),
		"name":     p.Name(),
		"category": p.Category(),
		"price":    strconv.FormatFloat(p.Price(), 'f', -1, 64),
		"tags":     p.Tags(),
	}
	if attrs := p.Attributes(); len(attrs) > 0 {
		data, err := json.Marshal(attrs)
		if err != nil {
			return nil, fmt.Errorf("marshal attributes: %w", err)
		}
		m["attrs_json"] = string(data)
	}
	return m, nil
}

// productFromHash hydrates a Product from an HGETALL result map.
func productFromHash(m map[string]string) (product.Product, error) {
	id, err := strconv.Atoi(m["id"])
	if err != nil {
		return product.Product{}, fmt.Errorf("invalid id %q: %w", m["id"], err)
	}

	var price float64
	if raw := m["price"]; raw != "" {
		price, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return product.Product{}, fmt.Errorf("product %d: invalid price: %w", id, err)
		}
	}

	var attrs map[string]string
	if raw := m["attrs_json"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
			return product.Product{}, fmt.Errorf("product %d: unmarshal attributes: %w", id, err)
		}
	}

	return product.Reconstruct(id, m["name"], m["category"], price, m["tags"], attrs), nil
}
