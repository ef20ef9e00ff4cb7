package middleware

import (
	"fmt"
	"net/http"

	"github.com/joshua31324324/user-management/internal/httputil"
)

// RequestSizeLimit caps request bodies at maxBytes. A declared Content-Length
// over the cap is refused with 413 up front; streamed bodies surface an
// *http.MaxBytesError to the handler once they cross it. maxBytes <= 0
// disables the check.
func RequestSizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				httputil.Error(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", maxBytes))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
