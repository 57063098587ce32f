package api

import (
	"net/http"
	"strconv"

	"github.com/nestora/nestora/pkg/observability"
)

// CorrelationIDHeader carries the correlation ID across service boundaries.
const CorrelationIDHeader = "X-Correlation-ID"

// statusRecorder captures the response status code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withRequestContext attaches request and correlation IDs to the request
// context, logs each request, and records request metrics.
func (s *Server) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.NewRequestContext(r.Context(), r.Header.Get(CorrelationIDHeader))
		w.Header().Set(CorrelationIDHeader, observability.CorrelationIDFromContext(ctx))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		timer := observability.StartTimer("http.request").
			WithMetrics(s.metrics).
			WithTags(
				observability.T("method", r.Method),
				observability.T("path", r.URL.Path),
			)

		next.ServeHTTP(rec, r.WithContext(ctx))

		status := strconv.Itoa(rec.status)
		timer.WithTags(observability.T(observability.StatusKey, status))
		duration := timer.Stop()

		s.metrics.Counter(observability.MetricHTTPRequests, 1,
			observability.T("method", r.Method),
			observability.T(observability.StatusKey, status),
		)
		s.logger.InfoContext(ctx, "request completed",
			"method", r.Method,
			"path", r.URL.Path,
			observability.StatusKey, rec.status,
			observability.DurationKey, duration.Milliseconds(),
		)
	})
}
