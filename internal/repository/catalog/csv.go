package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kailas-cloud/recodex/internal/domain/product"
)

// Reserved CSV columns. Any other column is kept as a string attribute.
const (
	colID       = "id"
	colName     = "name"
	colCategory = "category"
	colPrice    = "price"
	colTags     = "tags"
)

// LoadCSVFile reads products from a CSV file on disk.
func LoadCSVFile(path string) ([]product.Product, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	products, err := LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return products, nil
}

// LoadCSV reads products from CSV with a header row. Rows keep file order.
func LoadCSV(r io.Reader) ([]product.Product, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		name := strings.ToLower(header[i])
		if _, dup := cols[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		cols[name] = i
	}
	for _, required := range []string{colID, colTags} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var products []product.Product
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)

		p, err := parseRow(rec, cols, header)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		products = append(products, p)
	}

	return products, nil
}

func parseRow(rec []string, cols map[string]int, header []string) (product.Product, error) {
	field := func(name string) string {
		if i, ok := cols[name]; ok {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	id, err := strconv.Atoi(field(colID))
	if err != nil {
		return product.Product{}, fmt.Errorf("invalid id %q", field(colID))
	}

	var price float64
	if raw := field(colPrice); raw != "" {
		price, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return product.Product{}, fmt.Errorf("invalid price %q for product %d", raw, id)
		}
	}

	var attrs map[string]string
	for name, i := range cols {
		switch name {
		case colID, colName, colCategory, colPrice, colTags:
			continue
		}
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs[header[i]] = rec[i]
	}

	return product.New(id, field(colName), field(colCategory), price, field(colTags), attrs)
}
