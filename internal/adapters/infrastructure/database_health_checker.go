package infrastructure

import (
	"context"

	"gorm.io/gorm"
	"weathersub.app/internal/ports"
)

type DatabaseHealthChecker struct {
	db *gorm.DB
}

func NewDatabaseHealthChecker(db *gorm.DB) *DatabaseHealthChecker {
	return &DatabaseHealthChecker{db: db}
}

// Check pings the connection pool and reports its usage.
func (d *DatabaseHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "database",
		Details:   make(map[string]interface{}),
	}

	if d.db == nil {
		return unhealthy(status, "database instance is nil")
	}

	sqlDB, err := d.db.DB()
	if err != nil {
		return unhealthy(status, "failed to get underlying database connection")
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return unhealthy(status, err.Error())
	}

	stats := sqlDB.Stats()
	status.Status = ports.HealthStatusHealthy
	status.Details["open_connections"] = stats.OpenConnections
	status.Details["in_use"] = stats.InUse
	return status
}

func unhealthy(status ports.HealthStatus, reason string) ports.HealthStatus {
	status.Status = ports.HealthStatusUnhealthy
	status.Error = reason
	return status
}
