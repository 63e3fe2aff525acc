// Package httputil is the response boundary: it renders success values and
// normalized errors as JSON responses.
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	dErrors "faultline/pkg/domain-errors"
)

// maskedInternalMessage replaces the message of 500 responses so internal
// details never reach clients.
const maskedInternalMessage = "An internal server error occurred"

// errNilError is rendered when a caller hands WriteError a nil error.
var errNilError = errors.New("nil error reached the response boundary")

// ErrorResponse is the JSON envelope written for every failed request.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
	Code       string `json:"code"`
}

// HandlerFunc returns either a value rendered with status 200 or an error
// rendered through WriteError.
type HandlerFunc func(r *http.Request) (any, error)

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError normalizes err and writes the error envelope.
func WriteError(w http.ResponseWriter, err error) {
	if err == nil {
		err = errNilError
	}
	WriteJSON(w, dErrors.Normalize(err).StatusCode, ToErrorResponse(err))
}

// ToErrorResponse builds the client-visible envelope for err. The message of
// a 500 is masked; every other status keeps its message.
func ToErrorResponse(err error) ErrorResponse {
	de := dErrors.Normalize(err)
	if de == nil {
		de = dErrors.Normalize(errNilError)
	}
	message := de.Message
	if de.StatusCode == http.StatusInternalServerError {
		message = maskedInternalMessage
	}
	return ErrorResponse{
		StatusCode: de.StatusCode,
		Error:      http.StatusText(de.StatusCode),
		Message:    message,
		Code:       string(de.Code),
	}
}

// NotFound renders the normalized 404 for unmatched routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, dErrors.New(dErrors.CodeNotFound, http.StatusText(http.StatusNotFound)))
}

// MethodNotAllowed renders the normalized 405 for a known route hit with the
// wrong method.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, dErrors.New(dErrors.CodeMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed)))
}

// PanicError converts a recovered panic value into an internal error. An
// error-valued panic stays in the cause chain but never lends its status to
// the response.
func PanicError(rec any) *dErrors.Error {
	cause, ok := rec.(error)
	if ok {
		cause = fmt.Errorf("panic: %w", cause)
	} else {
		cause = fmt.Errorf("panic: %v", rec)
	}
	return dErrors.Wrap(cause, dErrors.CodeInternal, dErrors.InternalMessage)
}

// Handle adapts fn to an http.HandlerFunc. Whatever fn does, the request gets
// exactly one response: the value with 200, or the normalized error. Panics
// are recovered and rendered as internal errors, except http.ErrAbortHandler
// which is re-raised for net/http.
func Handle(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			v   any
			err error
		)
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					err = PanicError(rec)
				}
			}()
			v, err = fn(r)
		}()

		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, v)
	}
}
