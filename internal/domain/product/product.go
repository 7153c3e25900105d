package product

import (
	"fmt"
	"math"
)

// Product is a catalog record (immutable value object).
type Product struct {
	id       int
	name     string
	category string
	price    float64
	tags     string
	attrs    map[string]string
}

// New validates and creates a Product.
// Tags may be empty; such a product has no vocabulary terms and matches nothing.
func New(id int, name, category string, price float64, tags string, attrs map[string]string) (Product, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return Product{}, fmt.Errorf("product %d: price must be a finite number", id)
	}
	if price < 0 {
		return Product{}, fmt.Errorf("product %d: price must not be negative", id)
	}
	return Product{
		id:       id,
		name:     name,
		category: category,
		price:    price,
		tags:     tags,
		attrs:    cloneStringMap(attrs),
	}, nil
}

// Reconstruct creates a Product without validation (storage hydration).
func Reconstruct(id int, name, category string, price float64, tags string, attrs map[string]string) Product {
	return Product{id: id, name: name, category: category, price: price, tags: tags, attrs: attrs}
}

// ID returns the product identifier.
func (p *Product) ID() int { return p.id }

// Name returns the display name.
func (p *Product) Name() string { return p.name }

// Category returns the product category.
func (p *Product) Category() string { return p.category }

// Price returns the product price.
func (p *Product) Price() float64 { return p.price }

// Tags returns the free-text tag string.
func (p *Product) Tags() string { return p.tags }

// Attributes returns a copy of the extra source columns not modelled as fields.
func (p *Product) Attributes() map[string]string { return cloneStringMap(p.attrs) }

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
