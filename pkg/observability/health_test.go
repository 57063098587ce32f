package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthRegistry(t *testing.T) {
	t.Run("empty registry is healthy", func(t *testing.T) {
		r := NewHealthRegistry()
		health := r.GetOverallHealth(context.Background())
		assert.Equal(t, HealthStatusHealthy, health.Status)
		assert.Empty(t, health.Checks)
	})

	t.Run("aggregates check results", func(t *testing.T) {
		r := NewHealthRegistry()
		r.Register("database", func(ctx context.Context) HealthCheckResult {
			return HealthCheckResult{Status: HealthStatusHealthy}
		})
		r.Register("redis", func(ctx context.Context) HealthCheckResult {
			return HealthCheckResult{Status: HealthStatusDegraded, Message: "slow"}
		})

		health := r.GetOverallHealth(context.Background())
		assert.Equal(t, HealthStatusDegraded, health.Status)
		require.Len(t, health.Checks, 2)
		assert.Equal(t, HealthStatusHealthy, health.Checks["database"].Status)
		assert.Equal(t, HealthStatusDegraded, health.Checks["redis"].Status)
		assert.False(t, health.Checks["database"].Timestamp.IsZero())
	})

	t.Run("unhealthy wins over degraded", func(t *testing.T) {
		r := NewHealthRegistry()
		r.Register("redis", func(ctx context.Context) HealthCheckResult {
			return HealthCheckResult{Status: HealthStatusDegraded}
		})
		r.Register("database", func(ctx context.Context) HealthCheckResult {
			return HealthCheckResult{Status: HealthStatusUnhealthy}
		})

		health := r.GetOverallHealth(context.Background())
		assert.Equal(t, HealthStatusUnhealthy, health.Status)
	})
}

func TestDatabaseHealthChecker(t *testing.T) {
	healthy := DatabaseHealthChecker(func(ctx context.Context) error { return nil })
	assert.Equal(t, HealthStatusHealthy, healthy(context.Background()).Status)

	broken := DatabaseHealthChecker(func(ctx context.Context) error { return errors.New("dial timeout") })
	result := broken(context.Background())
	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Contains(t, result.Message, "dial timeout")
}

func TestRedisHealthChecker_DegradesOnly(t *testing.T) {
	broken := RedisHealthChecker(func(ctx context.Context) error { return errors.New("refused") })
	assert.Equal(t, HealthStatusDegraded, broken(context.Background()).Status)
}
