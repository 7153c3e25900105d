// Package catalog holds the immutable product catalog and its TF-IDF representation.
package catalog

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/kailas-cloud/recodex/internal/domain"
	"github.com/kailas-cloud/recodex/internal/domain/product"
	"github.com/kailas-cloud/recodex/internal/domain/textvec"
)

// Index is the read-only product catalog.
//
// A product's position (0..Len()-1) is the join key between the product, its vector
// and its similarity row. Positions are assigned once in load order and never change;
// a catalog change requires building a new Index.
type Index struct {
	products    []product.Product
	positions   map[int]int
	vectors     []textvec.Vector
	vocab       *textvec.Vocabulary
	fingerprint string
}

// Build vectorizes the tags of products in order and returns the index.
// Returns domain.ErrEmptyCatalog for an empty input and domain.ErrDuplicateProductID
// when identifiers repeat.
func Build(products []product.Product) (*Index, error) {
	if len(products) == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	positions := make(map[int]int, len(products))
	docs := make([]string, len(products))
	for i := range products {
		id := products[i].ID()
		if prev, ok := positions[id]; ok {
			return nil, fmt.Errorf("%w: %d at positions %d and %d", domain.ErrDuplicateProductID, id, prev, i)
		}
		positions[id] = i
		docs[i] = products[i].Tags()
	}

	vocab, vectors := textvec.FitTransform(docs)

	own := make([]product.Product, len(products))
	copy(own, products)

	return &Index{
		products:    own,
		positions:   positions,
		vectors:     vectors,
		vocab:       vocab,
		fingerprint: fingerprint(own),
	}, nil
}

// All returns the catalog in load order. Callers must not modify the slice.
func (x *Index) All() []product.Product { return x.products }

// FindPosition returns the position of the product with the given id.
func (x *Index) FindPosition(id int) (int, bool) {
	pos, ok := x.positions[id]
	return pos, ok
}

// Len returns the number of products.
func (x *Index) Len() int { return len(x.products) }

// Product returns the product at pos.
func (x *Index) Product(pos int) product.Product { return x.products[pos] }

// Vector returns the L2-normalised TF-IDF vector at pos.
func (x *Index) Vector(pos int) textvec.Vector { return x.vectors[pos] }

// Vectors returns all vectors in position order. Callers must not modify the slice.
func (x *Index) Vectors() []textvec.Vector { return x.vectors }

// VocabularySize returns the number of distinct tag terms in the catalog.
func (x *Index) VocabularySize() int { return x.vocab.Size() }

// Fingerprint identifies the catalog contents (ids, order and tags).
func (x *Index) Fingerprint() string { return x.fingerprint }

func fingerprint(products []product.Product) string {
	h := sha256.New()
	var buf [8]byte
	for i := range products {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(products[i].ID())))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(products[i].Price()))
		h.Write(buf[:])
		h.Write([]byte(products[i].Tags()))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
