package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faultline/internal/platform/metrics"
	"faultline/internal/platform/ratelimit"
	dErrors "faultline/pkg/domain-errors"
	"faultline/pkg/platform/httputil"
	"faultline/pkg/requestcontext"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	t.Run("generates a uuid", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("reuses inbound id", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(RequestIDHeader, "req-42")
		h.ServeHTTP(httptest.NewRecorder(), r)

		assert.Equal(t, "req-42", seen)
	})
}

func TestRecovery(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	h := Recovery(discardLogger(), m)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("defect")
	}))

	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "An internal server error occurred", body.Message)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.PanicsRecovered))
}

func TestRecoveryIgnoresStatusOfPanickedError(t *testing.T) {
	h := Recovery(discardLogger(), nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(dErrors.New(dErrors.CodeRateLimited, "slow down"))
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRecoveryRepanicsAbort(t *testing.T) {
	h := Recovery(discardLogger(), nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.Panics(t, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRateLimit(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	limiter := ratelimit.New(1, 1, time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	h := RateLimit(limiter, discardLogger(), m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	newReq := func() *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := requestcontext.WithClientIP(r.Context(), "1.2.3.4")
		ctx = requestcontext.WithTime(ctx, now)
		return r.WithContext(ctx)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, newReq())
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, newReq())
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var body httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, http.StatusTooManyRequests, body.StatusCode)
	assert.Equal(t, "Too Many Requests", body.Error)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.RateLimited))
}

func TestRateLimitDisabled(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := RateLimit(nil, discardLogger(), nil)(next)
	assert.NotNil(t, h)
}

func TestLatencyMiddlewareUsesRoutePattern(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(LatencyMiddleware(m))
	r.Use(Logger(discardLogger()))
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/7", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.RequestsTotal.WithLabelValues("/items/{id}", "503")))
}
