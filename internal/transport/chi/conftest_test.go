package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/domain/catalog"
	"github.com/kailas-cloud/recodex/internal/domain/product"
	healthuc "github.com/kailas-cloud/recodex/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/recodex/internal/usecase/recommend"
)

type mockPinger struct{ err error }

func (m mockPinger) Ping(_ context.Context) error { return m.err }

// newTestServer serves the red shoe / red hat / blue shoe catalog (ids 1..3).
// A non-nil pinger adds a database health check.
func newTestServer(t *testing.T, pinger healthuc.DBPinger) *Server {
	t.Helper()

	rows := []struct {
		id   int
		name string
		tags string
	}{
		{1, "Red Shoe", "red shoe"},
		{2, "Red Hat", "red hat"},
		{3, "Blue Shoe", "blue shoe"},
	}
	products := make([]product.Product, len(rows))
	for i, r := range rows {
		p, err := product.New(r.id, r.name, "apparel", float64(10*r.id), r.tags,
			map[string]string{"image": r.name + ".png"})
		if err != nil {
			t.Fatalf("product.New: %v", err)
		}
		products[i] = p
	}

	idx, err := catalog.Build(products)
	if err != nil {
		t.Fatalf("catalog.Build: %v", err)
	}
	eng, err := recommenduc.Build(context.Background(), idx, recommenduc.EngineOptions{})
	if err != nil {
		t.Fatalf("recommend.Build: %v", err)
	}

	svc := recommenduc.NewService(eng, zap.NewNop())
	return NewServer(svc, healthuc.New(svc, pinger), "test", zap.NewNop())
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}
