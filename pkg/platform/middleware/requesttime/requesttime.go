// Package requesttime provides middleware for request-scoped time.
// All work within a single request shares the same "now", so log lines and
// latency measurements agree with each other.
package requesttime

import (
	"net/http"
	"time"

	"faultline/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request
// and stores it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
