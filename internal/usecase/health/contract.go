package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CatalogSizer reports how many products are loaded.
type CatalogSizer interface {
	CatalogSize() int
}
