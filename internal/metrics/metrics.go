// Package metrics defines the service's Prometheus collectors.
// Collectors are registered explicitly from main via Register.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "recodex"

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			httpInFlight,
			RecommendRequestsTotal,
			RecommendDuration,
			RecommendCacheTotal,
			CatalogProducts,
			CatalogVocabularyTerms,
			SimilarityBuildSeconds,
		)
	})
}
