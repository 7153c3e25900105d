package recodex

import "github.com/kailas-cloud/recodex/internal/domain/product"

// Product is a catalog record.
type Product struct {
	ID         int
	Name       string
	Category   string
	Price      float64
	Tags       string
	Attributes map[string]string
}

func productFromDomain(p *product.Product) Product {
	return Product{
		ID:         p.ID(),
		Name:       p.Name(),
		Category:   p.Category(),
		Price:      p.Price(),
		Tags:       p.Tags(),
		Attributes: p.Attributes(),
	}
}

func productsFromDomain(pp []product.Product) []Product {
	out := make([]Product, len(pp))
	for i := range pp {
		out[i] = productFromDomain(&pp[i])
	}
	return out
}

func productsToDomain(pp []Product) ([]product.Product, error) {
	out := make([]product.Product, len(pp))
	for i, p := range pp {
		d, err := product.New(p.ID, p.Name, p.Category, p.Price, p.Tags, p.Attributes)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}
