// Package health aggregates component availability checks.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure. Search still works in this
	// state through the text fallback.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is down, which takes every
	// operation with it.
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

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db    DBPinger
	cache CachePinger
	ai    AIChecker
}

// New creates a Service. cache and ai can be nil when those components
// are not configured.
func New(db DBPinger, cache CachePinger, ai AIChecker) *Service {
	return &Service{db: db, cache: cache, ai: ai}
}

// Check runs health checks against all configured components. A database
// failure is unhealthy; cache or AI failures only degrade.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	dbDown := false
	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		dbDown = true
	} else {
		checks["database"] = CheckOK
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	if s.ai != nil {
		if err := s.ai.HealthCheck(ctx); err != nil {
			checks["ai"] = CheckError
		} else {
			checks["ai"] = CheckOK
		}
	}

	status := Healthy
	if dbDown {
		status = Unhealthy
	} else {
		for _, v := range checks {
			if v == CheckError {
				status = Degraded
				break
			}
		}
	}

	return Report{Status: status, Checks: checks}
}
