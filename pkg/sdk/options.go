package recodex

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	// catalog source; a non-nil products wins over csvPath, csvPath over the store
	products []Product
	csvPath  string

	addrs     []string
	password  string
	keyPrefix string

	k          int
	similarity string
	workers    int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithProducts uses an in-memory catalog. Order is preserved.
func WithProducts(products []Product) Option {
	return optionFunc(func(c *clientConfig) {
		c.products = products
	})
}

// WithCSV loads the catalog from a CSV file with at least id and tags columns.
func WithCSV(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.csvPath = path
	})
}

// WithValkey loads the catalog from a Valkey (or Redis) instance seeded by recodex-seed.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix overrides the store key prefix. Default: "recodex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithK sets how many products Recommend returns. Default: 3.
func WithK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.k = k
	})
}

// WithLazySimilarity computes pair similarities per query instead of
// materialising the N×N matrix up front. Use for catalogs too large for the matrix.
func WithLazySimilarity() Option {
	return optionFunc(func(c *clientConfig) {
		c.similarity = "lazy"
	})
}

// WithWorkers bounds the parallelism of the similarity build. Default: GOMAXPROCS.
func WithWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
