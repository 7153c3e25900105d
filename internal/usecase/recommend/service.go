package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/domain"
	"github.com/kailas-cloud/recodex/internal/domain/product"
	logpkg "github.com/kailas-cloud/recodex/internal/logger"
	"github.com/kailas-cloud/recodex/internal/metrics"
)

// DefaultMaxHistory caps the number of ids accepted per query.
const DefaultMaxHistory = 1000

// Service exposes the catalog and recommendation queries to transports.
type Service struct {
	engine     *Engine
	cache      Cache
	k          int
	maxHistory int
	logger     *zap.Logger
}

// NewService creates a recommendation service over a built engine.
func NewService(engine *Engine, logger *zap.Logger) *Service {
	return &Service{
		engine:     engine,
		k:          DefaultK,
		maxHistory: DefaultMaxHistory,
		logger:     logger,
	}
}

// WithK sets the number of recommendations per query.
func (s *Service) WithK(k int) *Service {
	if k > 0 {
		s.k = k
	}
	return s
}

// WithMaxHistory sets the maximum accepted history length.
func (s *Service) WithMaxHistory(n int) *Service {
	if n > 0 {
		s.maxHistory = n
	}
	return s
}

// WithCache enables result caching. A nil cache disables it.
func (s *Service) WithCache(c Cache) *Service {
	s.cache = c
	return s
}

// ListProducts returns the full catalog in load order.
func (s *Service) ListProducts(_ context.Context) []product.Product {
	return s.engine.Catalog().All()
}

// CatalogSize returns the number of loaded products.
func (s *Service) CatalogSize() int {
	return s.engine.Catalog().Len()
}

// Recommend returns the top k products for history.
func (s *Service) Recommend(ctx context.Context, history []int) ([]product.Product, error) {
	start := time.Now()
	products, err := s.recommend(ctx, history)
	metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	metrics.RecommendRequestsTotal.WithLabelValues(outcome(products, err)).Inc()

	if err != nil {
		if isInputError(err) {
			logpkg.FromContext(ctx).Debug("Rejected recommendation query",
				zap.Ints("history", history), zap.Error(err))
		} else {
			s.logger.Error("Recommendation failed", zap.Error(err))
		}
		return nil, err
	}
	return products, nil
}

func (s *Service) recommend(ctx context.Context, history []int) ([]product.Product, error) {
	if len(history) > s.maxHistory {
		return nil, fmt.Errorf("%w: %d ids (max %d)", domain.ErrHistoryTooLong, len(history), s.maxHistory)
	}

	fp := s.engine.Catalog().Fingerprint()
	if s.cache != nil && len(history) > 0 {
		if ids, ok := s.cache.Lookup(ctx, fp, history, s.k); ok {
			if products, ok := s.resolve(ids); ok {
				metrics.RecommendCacheTotal.WithLabelValues("hit").Inc()
				return products, nil
			}
		}
		metrics.RecommendCacheTotal.WithLabelValues("miss").Inc()
	}

	products, err := s.engine.Recommend(history, s.k)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	if s.cache != nil {
		ids := make([]int, len(products))
		for i := range products {
			ids[i] = products[i].ID()
		}
		s.cache.Store(ctx, fp, history, s.k, ids)
	}
	return products, nil
}

// resolve maps cached ids back to products; any unknown id invalidates the entry.
func (s *Service) resolve(ids []int) ([]product.Product, bool) {
	idx := s.engine.Catalog()
	out := make([]product.Product, len(ids))
	for i, id := range ids {
		pos, ok := idx.FindPosition(id)
		if !ok {
			return nil, false
		}
		out[i] = idx.Product(pos)
	}
	return out, true
}

func isInputError(err error) bool {
	return errors.Is(err, domain.ErrEmptyHistory) ||
		errors.Is(err, domain.ErrHistoryTooLong) ||
		errors.Is(err, domain.ErrProductNotFound)
}

func outcome(products []product.Product, err error) string {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrEmptyHistory), errors.Is(err, domain.ErrHistoryTooLong):
		return "invalid"
	case err != nil:
		return "error"
	case len(products) == 0:
		return "empty"
	default:
		return "ok"
	}
}
