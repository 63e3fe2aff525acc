package middleware

import (
	"log/slog"
	"net/http"

	"faultline/internal/platform/metrics"
	"faultline/internal/platform/ratelimit"
	dErrors "faultline/pkg/domain-errors"
	"faultline/pkg/platform/httputil"
	"faultline/pkg/requestcontext"
)

// RateLimit rejects clients that exceed their token bucket with a normalized
// 429. It keys on the client IP set by the metadata middleware. A nil limiter
// disables limiting.
func RateLimit(limiter *ratelimit.KeyLimiter, logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			clientIP := requestcontext.ClientIP(ctx)
			if !limiter.Allow(clientIP, requestcontext.Now(ctx)) {
				logger.WarnContext(ctx, "rate limit exceeded",
					"request_id", GetRequestID(ctx),
					"client_ip", clientIP,
				)
				m.IncrementRateLimited()
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "Too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
