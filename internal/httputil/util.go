package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-sod/nbayes/internal/logging"
)

// CheckJSONRequest writes an error response and returns false unless r uses method and carries a
// JSON body. Methods without a body skip the content type check.
func CheckJSONRequest(ctx context.Context, w http.ResponseWriter, r *http.Request, method string) bool {
	logger := logging.FromContext(ctx)
	if r.Method != method {
		msg := fmt.Sprintf("method %v is not allowed", r.Method)
		logger.Debug(msg)
		RespJSON(ctx, w, http.StatusMethodNotAllowed, errorResponse{Error: msg})
		return false
	}
	if method == http.MethodGet || method == http.MethodDelete {
		return true
	}
	if t := r.Header.Get("content-type"); len(t) < 16 || t[:16] != "application/json" {
		msg := "content-type is not application/json"
		logger.Debug(msg)
		RespJSON(ctx, w, http.StatusUnsupportedMediaType, errorResponse{Error: msg})
		return false
	}
	return true
}

// DecodeJSON reads at most maxBytes of the body into v, rejecting unknown fields. On failure the
// response is written and false returned.
func DecodeJSON(ctx context.Context, w http.ResponseWriter, r *http.Request, maxBytes int64, v interface{}) bool {
	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	if err := d.Decode(v); err != nil {
		DecodeErr(ctx, w, err)
		return false
	}
	return true
}

func DecodeErr(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		syntaxErr      *json.SyntaxError
		unmarshalError *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &syntaxErr):
		RespBadRequest(ctx, w, "malformed json at position %v", syntaxErr.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		RespBadRequest(ctx, w, "malformed json")
	case errors.As(err, &unmarshalError):
		RespBadRequest(ctx, w, "invalid value %v at position %v", unmarshalError.Field, unmarshalError.Offset)
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
		RespBadRequest(ctx, w, "unknown field %s", fieldName)
	case errors.Is(err, io.EOF):
		RespBadRequest(ctx, w, "body must not be empty")
	case err.Error() == "http: request body too large":
		RespJSON(ctx, w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
	default:
		RespInternalError(ctx, w, "failed to decode json %v", err)
	}
}

// errorResponse is the body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

// RespJSON writes v with the given status.
func RespJSON(ctx context.Context, w http.ResponseWriter, status int, v interface{}) {
	bytes, err := json.Marshal(v)
	if err != nil {
		RespInternalError(ctx, w, "failed to encode output json %v", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(bytes)
}

func RespBadRequest(ctx context.Context, w http.ResponseWriter, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logging.FromContext(ctx).Debug(msg)
	RespJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: msg})
}

func RespNotFound(ctx context.Context, w http.ResponseWriter, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logging.FromContext(ctx).Debug(msg)
	RespJSON(ctx, w, http.StatusNotFound, errorResponse{Error: msg})
}

func RespUnavailable(ctx context.Context, w http.ResponseWriter, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logging.FromContext(ctx).Warn(msg)
	RespJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{Error: msg})
}

// RespInternalError logs the details and hides them from the client.
func RespInternalError(ctx context.Context, w http.ResponseWriter, format string, args ...interface{}) {
	logging.FromContext(ctx).Errorf(format, args...)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"error":"internal error"}`))
}
