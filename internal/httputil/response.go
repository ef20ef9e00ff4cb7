package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/joshua31324324/user-management/internal/observability"
	"github.com/joshua31324324/user-management/pkg/domain"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"detail": message} with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Detail: message})
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve), errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrEmailNotVerified):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmailAlreadyExists),
		errors.Is(err, domain.ErrAccountLocked),
		errors.Is(err, domain.ErrVerificationTokenInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err with the status StatusFor picks. Server errors are
// logged and reported; their detail is never sent to the client.
func WriteError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.Error("request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
		}
		observability.CaptureError(err, map[string]string{"method": r.Method, "path": r.URL.Path})
		Error(w, status, "internal server error")
		return
	}
	Error(w, status, detailFor(err))
}

func detailFor(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	for _, sentinel := range []error{
		domain.ErrInvalidCredentials,
		domain.ErrAccountLocked,
		domain.ErrEmailNotVerified,
		domain.ErrEmailAlreadyExists,
		domain.ErrInvalidToken,
		domain.ErrUnauthenticated,
		domain.ErrRoleNotGrantable,
		domain.ErrForbidden,
		domain.ErrUserNotFound,
		domain.ErrVerificationTokenInvalid,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// DecodeJSON decodes the request body into v. Unknown fields are ignored.
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return domain.InvalidField("", "request body is empty")
		}
		return domain.InvalidField("", fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// DecodeBody reads a JSON or form encoded body into a flat string map.
func DecodeBody(r *http.Request) (map[string]string, error) {
	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			var maxBytes *http.MaxBytesError
			if errors.As(err, &maxBytes) {
				return nil, err
			}
			return nil, domain.InvalidField("", "invalid form body")
		}
		return flatten(r.PostForm), nil
	}

	var body map[string]string
	if err := DecodeJSON(r, &body); err != nil {
		return nil, err
	}
	return body, nil
}

func flatten(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for k := range values {
		out[k] = values.Get(k)
	}
	return out
}

// WriteDecodeError answers a body that could not be decoded.
func WriteDecodeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		Error(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	WriteError(w, r, logger, err)
}
