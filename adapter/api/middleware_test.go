package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/nestora/nestora/pkg/observability"
	"github.com/stretchr/testify/require"
)

func TestRequestContext_CorrelationID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	require.NotEmpty(t, rec.Header().Get(CorrelationIDHeader))

	// An incoming correlation ID is propagated unchanged.
	rec = env.do(t, http.MethodGet, "/health", "", map[string]string{
		CorrelationIDHeader: "corr-123",
	})
	require.Equal(t, "corr-123", rec.Header().Get(CorrelationIDHeader))
}

func TestRequestContext_RecordsMetrics(t *testing.T) {
	metrics := observability.NewInMemoryMetrics()
	cfg := DefaultServerConfig()
	cfg.Metrics = metrics
	env := newTestEnvWithConfig(t, cfg)

	env.do(t, http.MethodGet, "/health", "", nil)
	env.do(t, http.MethodGet, "/health", "", nil)

	count := metrics.GetCounter(observability.MetricHTTPRequests,
		observability.T("method", http.MethodGet),
		observability.T(observability.StatusKey, "200"),
	)
	require.Equal(t, int64(2), count)

	timings := metrics.GetTimings(observability.MetricOperationDuration,
		observability.T("method", http.MethodGet),
		observability.T("path", "/health"),
		observability.T(observability.StatusKey, "200"),
		observability.T("operation", "http.request"),
	)
	require.Len(t, timings, 2)
}

func TestHealthEndpoint_WithRegistry(t *testing.T) {
	health := observability.NewHealthRegistry()
	health.Register("database", observability.DatabaseHealthChecker(func(ctx context.Context) error {
		return nil
	}))
	health.Register("redis", observability.RedisHealthChecker(func(ctx context.Context) error {
		return context.DeadlineExceeded
	}))

	cfg := DefaultServerConfig()
	cfg.Health = health
	env := newTestEnvWithConfig(t, cfg)

	// A degraded component does not take the service down.
	rec := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "degraded", body["status"])
	checks := body["checks"].(map[string]any)
	require.Equal(t, "healthy", checks["database"].(map[string]any)["status"])

	health.Register("database", observability.DatabaseHealthChecker(func(ctx context.Context) error {
		return context.DeadlineExceeded
	}))
	rec = env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "unhealthy", decodeBody(t, rec)["status"])
}
