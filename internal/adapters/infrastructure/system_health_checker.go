package infrastructure

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"weathersub.app/internal/ports"
)

var _ ports.SystemHealthChecker = (*SystemHealthChecker)(nil)

// SystemHealthChecker runs every registered check concurrently.
type SystemHealthChecker struct {
	checkers map[string]ports.HealthChecker
}

func NewSystemHealthChecker(checkers map[string]ports.HealthChecker) *SystemHealthChecker {
	registered := make(map[string]ports.HealthChecker, len(checkers))
	for name, checker := range checkers {
		if checker != nil {
			registered[name] = checker
		}
	}
	return &SystemHealthChecker{checkers: registered}
}

func (s *SystemHealthChecker) CheckAll(ctx context.Context) map[string]ports.HealthStatus {
	var (
		mu      sync.Mutex
		results = make(map[string]ports.HealthStatus, len(s.checkers))
		g       errgroup.Group
	)

	for name, checker := range s.checkers {
		g.Go(func() error {
			status := checker.Check(ctx)
			mu.Lock()
			results[name] = status
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// IsHealthy reports whether every status in results is healthy.
func IsHealthy(results map[string]ports.HealthStatus) bool {
	for _, status := range results {
		if status.Status != ports.HealthStatusHealthy {
			return false
		}
	}
	return true
}
