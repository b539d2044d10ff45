package httputil

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/matzehuels/tracetube/pkg/errors"
)

// DefaultMaxBody caps request bodies decoded by DecodeJSON.
const DefaultMaxBody = 64 << 20

// RequestIDHeader carries the per-request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error     ErrorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

// ErrorDetail holds the machine-readable code and the user message.
type ErrorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// StatusFor maps the kind of err's code to an HTTP status.
func StatusFor(err error) int {
	switch errors.KindOf(err) {
	case errors.KindValidation:
		return http.StatusUnprocessableEntity
	case errors.KindParameter, errors.KindInput:
		return http.StatusBadRequest
	case errors.KindUnsupported:
		return http.StatusUnsupportedMediaType
	case errors.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// WriteJSON writes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the error envelope for err and returns the status used.
// Internal errors are reported without their message.
func WriteError(w http.ResponseWriter, err error) int {
	status := StatusFor(err)
	detail := ErrorDetail{
		Code:    errors.GetCodeOr(err, errors.ErrCodeInternal),
		Message: errors.UserMessage(err),
	}
	if status == http.StatusInternalServerError {
		detail.Message = "internal error"
	}
	WriteJSON(w, status, ErrorBody{Error: detail, RequestID: w.Header().Get(RequestIDHeader)})
	return status
}

// DecodeJSON decodes the request body into v. Bodies over maxBytes, unknown
// fields and trailing data are INVALID_FORMAT errors. A maxBytes of zero
// means DefaultMaxBody.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBody
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body")
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New(errors.ErrCodeInvalidFormat, "request body must hold a single JSON value")
	}
	return nil
}
