package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
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
	checks map[string]Checker
}

// New creates a Service over named component checkers. An empty map is
// valid and reports Healthy.
func New(checks map[string]Checker) *Service {
	return &Service{checks: checks}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	results := make(map[string]CheckResult, len(s.checks))

	status := Healthy
	for name, c := range s.checks {
		if err := c.HealthCheck(ctx); err != nil {
			results[name] = CheckError
			status = Degraded
		} else {
			results[name] = CheckOK
		}
	}

	return Report{Status: status, Checks: results}
}
