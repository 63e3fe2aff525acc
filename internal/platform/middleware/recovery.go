package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"faultline/internal/platform/metrics"
	"faultline/pkg/platform/httputil"
)

// Recovery turns a panic anywhere below it into a normalized 500 response so
// no request is left without an answer.
func Recovery(logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				ctx := r.Context()
				logger.ErrorContext(ctx, "panic recovered",
					"request_id", GetRequestID(ctx),
					"panic", fmt.Sprint(rec),
					"stack", string(debug.Stack()),
				)
				m.IncrementPanicsRecovered()
				httputil.WriteError(w, httputil.PanicError(rec))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
