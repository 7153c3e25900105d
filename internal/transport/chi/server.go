// Package chi exposes the recommendation service over HTTP using the chi router.
package chi

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/domain"
	"github.com/kailas-cloud/recodex/internal/domain/product"
	logpkg "github.com/kailas-cloud/recodex/internal/logger"
	healthuc "github.com/kailas-cloud/recodex/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/recodex/internal/usecase/recommend"
)

// maxBodyBytes caps request bodies; a history of 1000 ids fits comfortably.
const maxBodyBytes = 1 << 20

// ErrorCode is the machine-readable error identifier in API responses.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeEmptyHistory       ErrorCode = "empty_history"
	ErrorCodeHistoryTooLong     ErrorCode = "history_too_long"
	ErrorCodeProductNotFound    ErrorCode = "product_not_found"
	ErrorCodeCatalogUnavailable ErrorCode = "catalog_unavailable"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeRateLimited        ErrorCode = "rate_limited"
	ErrorCodeNotFound           ErrorCode = "not_found"
	ErrorCodeMethodNotAllowed   ErrorCode = "method_not_allowed"
	ErrorCodeInternal           ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	ProductID *int      `json:"product_id,omitempty"`
}

// ProductResponse is the wire form of a catalog product.
// Attributes are written as top-level fields, one per extra source column.
type ProductResponse struct {
	ID         int               `json:"id"`
	Name       string            `json:"name"`
	Category   string            `json:"category"`
	Price      float64           `json:"price"`
	Tags       string            `json:"tags"`
	Attributes map[string]string `json:"-"`
}

// MarshalJSON flattens Attributes next to the modelled fields, which take precedence on a name clash.
func (p ProductResponse) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Attributes)+5)
	for k, v := range p.Attributes {
		out[k] = v
	}
	out["id"] = p.ID
	out["name"] = p.Name
	out["category"] = p.Category
	out["price"] = p.Price
	out["tags"] = p.Tags
	return json.Marshal(out)
}

// RecommendRequest is the body of POST /recommend.
type RecommendRequest struct {
	History []int `json:"history" validate:"required"`
}

// RecommendResponse is the body of a successful POST /recommend.
type RecommendResponse struct {
	Recommendations []ProductResponse `json:"recommendations"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks"`
	Products int               `json:"products"`
	Version  string            `json:"version"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	recommend     *recommenduc.Service
	health        *healthuc.Service
	version       string
	validate      *validator.Validate
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	recommend *recommenduc.Service,
	health *healthuc.Service,
	version string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		recommend: recommend,
		health:    health,
		version:   version,
		validate:  validator.New(),
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		productNotFoundHandler,
		sentinelHandler(domain.ErrEmptyHistory, http.StatusBadRequest, ErrorCodeEmptyHistory),
		sentinelHandler(domain.ErrHistoryTooLong, http.StatusBadRequest, ErrorCodeHistoryTooLong),
		sentinelHandler(domain.ErrEmptyCatalog, http.StatusServiceUnavailable, ErrorCodeCatalogUnavailable),
	}
	return s
}

// ListProducts handles GET /products.
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := s.recommend.ListProducts(r.Context())
	writeJSON(w, http.StatusOK, productsToResponse(products))
}

// Recommend handles POST /recommend.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: unexpected data after JSON object")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "history is required")
		return
	}

	ctx := logpkg.With(r.Context(), zap.Int("history_len", len(req.History)))
	products, err := s.recommend.Recommend(ctx, req.History)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RecommendResponse{Recommendations: productsToResponse(products)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:   string(report.Status),
		Checks:   checks,
		Products: report.Products,
		Version:  s.version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func productsToResponse(products []product.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		p := &products[i]
		out[i] = ProductResponse{
			ID:         p.ID(),
			Name:       p.Name(),
			Category:   p.Category(),
			Price:      p.Price(),
			Tags:       p.Tags(),
			Attributes: p.Attributes(),
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-facing message without exposing internals.
func safeDomainMessage(err error) string {
	var pnf *domain.ProductNotFoundError
	if errors.As(err, &pnf) {
		return pnf.Error()
	}
	sentinels := []error{
		domain.ErrEmptyHistory,
		domain.ErrHistoryTooLong,
		domain.ErrEmptyCatalog,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// productNotFoundHandler reports the unresolved id alongside the message.
func productNotFoundHandler(w http.ResponseWriter, err error, msg string) bool {
	var pnf *domain.ProductNotFoundError
	if !errors.As(err, &pnf) {
		return false
	}
	id := pnf.ID
	writeJSON(w, http.StatusNotFound, ErrorResponse{
		Code:      ErrorCodeProductNotFound,
		Message:   msg,
		ProductID: &id,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("Unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternal, msg)
}
