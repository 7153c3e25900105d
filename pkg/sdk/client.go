package recodex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/db"
	dbValkey "github.com/kailas-cloud/recodex/internal/db/valkey"
	"github.com/kailas-cloud/recodex/internal/domain/catalog"
	"github.com/kailas-cloud/recodex/internal/domain/product"
	"github.com/kailas-cloud/recodex/internal/domain/similarity"
	catalogrepo "github.com/kailas-cloud/recodex/internal/repository/catalog"
	healthuc "github.com/kailas-cloud/recodex/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/recodex/internal/usecase/recommend"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interface for substitution in tests.
type recommendUseCase interface {
	ListProducts(ctx context.Context) []product.Product
	Recommend(ctx context.Context, history []int) ([]product.Product, error)
}

// Client is the recodex SDK entry point.
type Client struct {
	store     db.Store
	svc       recommendUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New loads the catalog, builds the recommendation engine and returns a ready Client.
// The provided context bounds the store readiness check and the similarity build.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.products == nil && cfg.csvPath == "" && len(cfg.addrs) == 0 {
		return nil, errors.New("recodex: catalog source required (use WithProducts, WithCSV or WithValkey)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var store db.Store
	if len(cfg.addrs) > 0 {
		store, err = createStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	products, err := loadProducts(ctx, cfg, store)
	if err == nil {
		var c *Client
		c, err = wireClient(ctx, products, store, cfg, obs)
		if err == nil {
			return c, nil
		}
	}

	if store != nil {
		store.Close()
	}
	return nil, err
}

func createStore(ctx context.Context, cfg *clientConfig) (db.Store, error) {
	s, err := dbValkey.NewStore(dbValkey.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("recodex: create valkey store: %w", err)
	}
	if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		s.Close()
		return nil, fmt.Errorf("recodex: database not ready: %w", err)
	}
	return s, nil
}

func loadProducts(ctx context.Context, cfg *clientConfig, store db.Store) ([]product.Product, error) {
	switch {
	case cfg.products != nil:
		products, err := productsToDomain(cfg.products)
		if err != nil {
			return nil, fmt.Errorf("recodex: %w", err)
		}
		return products, nil
	case cfg.csvPath != "":
		products, err := catalogrepo.LoadCSVFile(cfg.csvPath)
		if err != nil {
			return nil, fmt.Errorf("recodex: load csv: %w", err)
		}
		return products, nil
	default:
		products, err := catalogrepo.New(store, cfg.keyPrefix).Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("recodex: load catalog from store: %w", err)
		}
		return products, nil
	}
}

func wireClient(
	ctx context.Context,
	products []product.Product,
	store db.Store,
	cfg *clientConfig,
	obs *observer,
) (*Client, error) {
	idx, err := catalog.Build(products)
	if err != nil {
		return nil, fmt.Errorf("recodex: build catalog: %w", err)
	}

	engine, err := recommenduc.Build(ctx, idx, recommenduc.EngineOptions{
		Mode:    similarity.Mode(cfg.similarity),
		Workers: cfg.workers,
	})
	if err != nil {
		return nil, fmt.Errorf("recodex: build engine: %w", err)
	}

	svc := recommenduc.NewService(engine, zap.NewNop()).WithK(cfg.k)

	// nil interface, not a typed nil pointer, when there is no store
	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}

	return &Client{
		store:     store,
		svc:       svc,
		healthSvc: healthuc.New(svc, pinger),
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Products returns the full catalog in load order.
func (c *Client) Products(ctx context.Context) []Product {
	start := time.Now()
	defer func() { c.obs.observe("products", start, nil) }()

	return productsFromDomain(c.svc.ListProducts(ctx))
}

// Recommend returns the products most similar to the browsing history, best first.
// Viewed products are never recommended.
func (c *Client) Recommend(ctx context.Context, history []int) (_ []Product, err error) {
	start := time.Now()
	defer func() { c.obs.observe("recommend", start, err) }()

	products, err := c.svc.Recommend(ctx, history)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	return productsFromDomain(products), nil
}
