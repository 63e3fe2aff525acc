package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, Normalize(nil))
	})

	t.Run("normalized error passes through unchanged", func(t *testing.T) {
		original := New(CodeUnavailable, "Data read failed")

		once := Normalize(original)
		twice := Normalize(once)

		assert.Same(t, original, once)
		assert.Same(t, once, twice)
		assert.Equal(t, http.StatusServiceUnavailable, twice.StatusCode)
		assert.Equal(t, "Data read failed", twice.Message)
	})

	t.Run("wrapped normalized error is found", func(t *testing.T) {
		original := New(CodeUnavailable, "Data read failed")
		wrapped := fmt.Errorf("fetch: %w", original)

		assert.Same(t, original, Normalize(wrapped))
	})

	t.Run("raw errors become internal errors", func(t *testing.T) {
		raws := []error{
			errors.New("boom"),
			fmt.Errorf("nested: %w", errors.New("deeper")),
			&customErr{},
		}
		for _, raw := range raws {
			got := Normalize(raw)
			require.NotNil(t, got)
			assert.Equal(t, http.StatusInternalServerError, got.StatusCode)
			assert.Equal(t, CodeInternal, got.Code)
			assert.Equal(t, InternalMessage, got.Message)
			assert.ErrorIs(t, got, raw)
		}
	})

	t.Run("internal errors are idempotent too", func(t *testing.T) {
		first := Normalize(errors.New("boom"))
		assert.Same(t, first, Normalize(first))
	})
}

type customErr struct{}

func (*customErr) Error() string { return "custom" }

func TestWithStatus(t *testing.T) {
	cause := errors.New("read failed")

	e := WithStatus(cause, http.StatusServiceUnavailable, "Data read failed")
	assert.Equal(t, CodeUnavailable, e.Code)
	assert.Equal(t, http.StatusServiceUnavailable, e.StatusCode)
	assert.ErrorIs(t, e, cause)

	e = WithStatus(cause, http.StatusOK, "")
	assert.Equal(t, http.StatusInternalServerError, e.StatusCode)
	assert.Equal(t, "read failed", e.Message)

	e = WithStatus(nil, http.StatusMethodNotAllowed, "Method Not Allowed")
	assert.Equal(t, CodeMethodNotAllowed, e.Code)

	e = WithStatus(cause, http.StatusTeapot, "short and stout")
	assert.Equal(t, CodeBadRequest, e.Code)
	assert.Equal(t, http.StatusTeapot, e.StatusCode)
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("ctx: %w", New(CodeTimeout, "slow"))
	assert.True(t, HasCode(err, CodeTimeout))
	assert.True(t, Is(err, CodeTimeout))
	assert.False(t, HasCode(err, CodeInternal))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "service_unavailable: Data read failed", New(CodeUnavailable, "Data read failed").Error())
	assert.Equal(t, "service_unavailable: API response parse error: bad json",
		Wrap(errors.New("bad json"), CodeUnavailable, "API response parse error").Error())
}

func TestStatusFor(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:       http.StatusBadRequest,
		CodeNotFound:         http.StatusNotFound,
		CodeMethodNotAllowed: http.StatusMethodNotAllowed,
		CodeRateLimited:      http.StatusTooManyRequests,
		CodeInternal:         http.StatusInternalServerError,
		CodeUnavailable:      http.StatusServiceUnavailable,
		CodeTimeout:          http.StatusGatewayTimeout,
		Code("unknown"):      http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, StatusFor(code), "code %s", code)
	}
}
