package api

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/nova-metrics/eventpipe/internal/platform"
	"github.com/nova-metrics/eventpipe/internal/ratelimit"
	"github.com/nova-metrics/eventpipe/pkg/logger"
)

// RateLimitMiddleware enforces internal/ratelimit against the client's
// remote address, following the teacher's fail-open-on-cache-error
// posture from pkg/api/middleware.RateLimitMiddleware.
type RateLimitMiddleware struct {
	limiter *ratelimit.Limiter
	metrics *platform.Metrics
}

// NewRateLimitMiddleware builds a RateLimitMiddleware.
func NewRateLimitMiddleware(limiter *ratelimit.Limiter, metrics *platform.Metrics) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, metrics: metrics}
}

// Wrap applies the rate limit check ahead of next.
func (m *RateLimitMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			key = host
		}

		res, err := m.limiter.Allow(r.Context(), key)
		if err != nil {
			logger.L().ErrorContext(r.Context(), "rate limit check failed", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.Reset).Unix(), 10))

		if !res.Allowed {
			m.metrics.RateLimitExceeded.WithLabelValues(key).Inc()
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// MetricsMiddleware records per-request counters and in-flight gauge.
type MetricsMiddleware struct {
	metrics *platform.Metrics
}

// NewMetricsMiddleware builds a MetricsMiddleware.
func NewMetricsMiddleware(metrics *platform.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: metrics}
}

// Wrap records request duration, status code, and concurrency around next.
func (m *MetricsMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.metrics.ActiveConnections.Inc()
		defer m.metrics.ActiveConnections.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		status := strconv.Itoa(sw.status)
		endpoint := r.URL.Path
		m.metrics.APIRequests.WithLabelValues(r.Method, endpoint, status).Inc()
		m.metrics.APIRequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
