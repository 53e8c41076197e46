// Package http provides HTTP server and handler implementations.
//
// This file implements the builder for JSON responses and the mapping of
// domain errors onto status codes.

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"spendingtracker/internal/core"
	applog "spendingtracker/internal/log"
	"spendingtracker/internal/middleware/trace"
)

var (
	errBadRequest    = errors.New("bad request")
	errPhotoTooLarge = errors.New("photo too large")
	errNoPhoto       = errors.New("transaction has no photo")
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	payload    any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.payload == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	// encode before the status goes out so a failure can still become a 500
	var buf bytes.Buffer
	status := b.statusCode
	if err := json.NewEncoder(&buf).Encode(b.payload); err != nil {
		applog.FromContext(context.Background()).WithComponent(applog.ComponentHTTP).Error("Failed to encode JSON response", applog.FieldError, err)
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(errorBody{Error: http.StatusText(status)})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse creates a JSON error response.
func ErrorResponse(statusCode int, message, requestID string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(errorBody{Error: message, RequestID: requestID})
}

// StatusForError maps domain errors to HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrCardNotFound),
		errors.Is(err, core.ErrTransactionNotFound),
		errors.Is(err, core.ErrMissingCard),
		errors.Is(err, errNoPhoto):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidExpiration),
		errors.Is(err, core.ErrConfirmationRequired),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errPhotoTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and writes the matching JSON error. Server-side
// failures hide their detail from the client.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := StatusForError(err)
	requestID := trace.GetRequestID(r.Context())

	message := err.Error()
	if status >= 500 {
		applog.NewRequestLog(applog.FromContext(r.Context()).WithComponent(applog.ComponentHTTP)).
			Failed(r.Context(), op, err, applog.NewFields().
				Card(chi.URLParam(r, "cardID")).
				Transaction(chi.URLParam(r, "txID")))
		message = http.StatusText(status)
	}

	ErrorResponse(status, message, requestID).Write(w)
}
