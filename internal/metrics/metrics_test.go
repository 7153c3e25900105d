package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister_Idempotent(t *testing.T) {
	Register()
	Register() // second call must not panic on duplicate registration

	CatalogProducts.Set(3)
	if got := testutil.ToFloat64(CatalogProducts); got != 3 {
		t.Errorf("expected catalog_products=3, got %f", got)
	}
}

func TestRecommendRequestsTotal_Labels(t *testing.T) {
	before := testutil.ToFloat64(RecommendRequestsTotal.WithLabelValues("ok"))
	RecommendRequestsTotal.WithLabelValues("ok").Inc()
	after := testutil.ToFloat64(RecommendRequestsTotal.WithLabelValues("ok"))
	if after-before != 1 {
		t.Errorf("expected increment of 1, got %f", after-before)
	}
}
