package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional dependency is failing; recommendations still work.
	Degraded Status = "degraded"
	// Unhealthy indicates the catalog is unusable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// DefaultCheckTimeout bounds each dependency probe.
const DefaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status   Status
	Checks   map[string]CheckResult
	Products int
}

// Service coordinates health checks.
type Service struct {
	catalog CatalogSizer
	db      DBPinger
	timeout time.Duration
}

// New creates a Service. db is nil when the catalog is served from a file without a cache.
func New(catalog CatalogSizer, db DBPinger) *Service {
	return &Service{catalog: catalog, db: db, timeout: DefaultCheckTimeout}
}

// WithTimeout overrides the per-probe timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	size := s.catalog.CatalogSize()
	if size > 0 {
		checks["catalog"] = CheckOK
	} else {
		checks["catalog"] = CheckError
		status = Unhealthy
	}

	if s.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.db.Ping(pingCtx)
		cancel()

		if err != nil {
			checks["database"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["database"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks, Products: size}
}
